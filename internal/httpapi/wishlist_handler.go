package httpapi

import (
	"net/http"

	"greeneats-be/internal/wishlist"

	"github.com/gin-gonic/gin"
)

type WishlistHandler struct {
	wishlists wishlist.Service
}

func NewWishlistHandler(wishlists wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

func (h *WishlistHandler) Get(c *gin.Context) {
	products, err := h.wishlists.List(c.Request.Context(), mustUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": products})
}

type wishlistItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
}

func (h *WishlistHandler) Add(c *gin.Context) {
	var req wishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	products, err := h.wishlists.Add(c.Request.Context(), mustUserID(c), req.ProductID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": products})
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	id, ok := cartProductID(c)
	if !ok {
		return
	}

	products, err := h.wishlists.Remove(c.Request.Context(), mustUserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": products})
}
