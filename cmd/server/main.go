package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greeneats-be/internal/cart"
	"greeneats-be/internal/config"
	"greeneats-be/internal/db"
	"greeneats-be/internal/httpapi"
	"greeneats-be/internal/logger"
	"greeneats-be/internal/metrics"
	"greeneats-be/internal/notify"
	"greeneats-be/internal/order"
	"greeneats-be/internal/product"
	"greeneats-be/internal/report"
	"greeneats-be/internal/user"
	"greeneats-be/internal/wishlist"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := db.InitDB(cfg)
	defer database.Close()

	mailer := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	dispatcher := notify.NewDispatcher(mailer, log)
	defer dispatcher.Close()

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, cartRepo, userRepo, dispatcher)

	reportRepo := report.NewRepository(database)
	reportSvc := report.NewService(reportRepo)

	wishlistRepo := wishlist.NewRepository(database)
	wishlistSvc := wishlist.NewService(wishlistRepo, productRepo)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Auth:           httpapi.NewAuthHandler(userSvc),
		Products:       httpapi.NewProductHandler(productSvc),
		Carts:          httpapi.NewCartHandler(cartSvc),
		Orders:         httpapi.NewOrderHandler(orderSvc),
		Reports:        httpapi.NewReportHandler(reportSvc),
		Wishlists:      httpapi.NewWishlistHandler(wishlistSvc),
		Metrics:        metrics.NewServerMetrics("api"),
		AllowedOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
