package httpapi

import (
	"net/http"

	"greeneats-be/internal/product"
	"greeneats-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products product.Service
}

func NewProductHandler(products product.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

func productID(c *gin.Context) (uint, bool) {
	id, err := utils.ToUint(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) List(c *gin.Context) {
	var category *string
	if v, ok := c.GetQuery("category"); ok && v != "" {
		category = &v
	}

	items, err := h.products.List(c.Request.Context(), category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": items})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

type createProductRequest struct {
	Name               string  `json:"name" binding:"required"`
	Description        string  `json:"description"`
	Price              float64 `json:"price" binding:"required"`
	DiscountPercentage float64 `json:"discountPercentage"`
	Category           string  `json:"category" binding:"required"`
	Brand              string  `json:"brand"`
	Stock              int     `json:"stock"`
	ImageURL           string  `json:"imageUrl"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.products.Create(c.Request.Context(), product.CreateInput{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		DiscountPercentage: req.DiscountPercentage,
		Category:           req.Category,
		Brand:              req.Brand,
		Stock:              req.Stock,
		ImageURL:           req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": p})
}

type setStockRequest struct {
	Stock int `json:"stock"`
}

func (h *ProductHandler) SetStock(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req setStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.products.SetStock(c.Request.Context(), id, req.Stock); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type discountRequest struct {
	Percentage float64 `json:"percentage" binding:"required"`
}

func (h *ProductHandler) ApplyDiscount(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req discountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.products.ApplyDiscount(c.Request.Context(), id, req.Percentage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

func (h *ProductHandler) ClearDiscount(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	p, err := h.products.ClearDiscount(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}
