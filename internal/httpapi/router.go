package httpapi

import (
	"net/http"

	"greeneats-be/internal/metrics"
	"greeneats-be/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Auth      *AuthHandler
	Products  *ProductHandler
	Carts     *CartHandler
	Orders    *OrderHandler
	Reports   *ReportHandler
	Wishlists *WishlistHandler

	Metrics        *metrics.ServerMetrics
	AllowedOrigins []string
}

// NewRouter assembles the HTTP surface: ambient middleware first, then the
// public, user, and admin route groups.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	r.Use(cors.New(corsCfg))

	r.Use(middleware.Auth())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimitGeneral())

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitStrict())
	{
		authGroup.POST("/register", cfg.Auth.Register)
		authGroup.POST("/login", cfg.Auth.Login)
		authGroup.POST("/logout", cfg.Auth.Logout)
		authGroup.GET("/me", middleware.RequireUser(), cfg.Auth.Me)
	}

	products := api.Group("/products")
	{
		products.GET("", cfg.Products.List)
		products.GET("/:id", cfg.Products.Get)

		admin := products.Group("", middleware.RequireAdmin())
		admin.POST("", cfg.Products.Create)
		admin.PATCH("/:id/stock", cfg.Products.SetStock)
		admin.POST("/:id/discount", cfg.Products.ApplyDiscount)
		admin.DELETE("/:id/discount", cfg.Products.ClearDiscount)
	}

	carts := api.Group("/cart", middleware.RequireUser())
	{
		carts.GET("", cfg.Carts.Get)
		carts.POST("/items", cfg.Carts.AddItem)
		carts.PATCH("/items/:productId", cfg.Carts.UpdateItem)
		carts.DELETE("/items/:productId", cfg.Carts.RemoveItem)
		carts.DELETE("", cfg.Carts.Clear)
	}

	wishlists := api.Group("/wishlist", middleware.RequireUser())
	{
		wishlists.GET("", cfg.Wishlists.Get)
		wishlists.POST("", cfg.Wishlists.Add)
		wishlists.DELETE("/:productId", cfg.Wishlists.Remove)
	}

	orders := api.Group("/orders", middleware.RequireUser())
	{
		orders.POST("", cfg.Orders.Checkout)
		orders.GET("", cfg.Orders.History)
		orders.GET("/latest", cfg.Orders.LatestStatus)
		orders.GET("/:id", cfg.Orders.Get)
		orders.POST("/:id/cancel", cfg.Orders.Cancel)
		orders.POST("/:id/refunds", cfg.Orders.RequestRefund)
	}

	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/orders", cfg.Orders.ListAll)
		admin.GET("/orders/delivery-list", cfg.Orders.DeliveryList)
		admin.PATCH("/orders/:id/status", cfg.Orders.UpdateStatus)
		admin.GET("/refunds", cfg.Orders.ListRefundRequests)
		admin.POST("/refunds/:refundId/approve", cfg.Orders.ApproveRefund)
		admin.POST("/refunds/:refundId/reject", cfg.Orders.RejectRefund)
		admin.GET("/invoices", cfg.Orders.Invoices)
		admin.GET("/reports/revenue", cfg.Reports.Revenue)
		admin.GET("/reports/product-distribution", cfg.Reports.ProductDistribution)
	}

	return r
}
