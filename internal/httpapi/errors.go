package httpapi

import (
	"errors"
	"net/http"

	"greeneats-be/internal/cart"
	"greeneats-be/internal/logger"
	"greeneats-be/internal/order"
	"greeneats-be/internal/product"
	"greeneats-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByErr = map[error]int{
	// 400
	order.ErrIncompleteShipping:  http.StatusBadRequest,
	order.ErrCartEmpty:           http.StatusBadRequest,
	order.ErrInvalidStatus:       http.StatusBadRequest,
	order.ErrInvalidQuantity:     http.StatusBadRequest,
	cart.ErrInvalidQuantity:      http.StatusBadRequest,
	product.ErrInvalidPrice:      http.StatusBadRequest,
	product.ErrInvalidStock:      http.StatusBadRequest,
	product.ErrInvalidDiscount:   http.StatusBadRequest,

	// 401 / 403
	user.ErrInvalidCredentials: http.StatusUnauthorized,
	order.ErrNotOwner:          http.StatusForbidden,

	// 404
	order.ErrOrderNotFound:      http.StatusNotFound,
	order.ErrRefundNotFound:     http.StatusNotFound,
	order.ErrProductNotInOrder:  http.StatusNotFound,
	product.ErrProductNotFound:  http.StatusNotFound,
	cart.ErrProductNotFound:     http.StatusNotFound,
	cart.ErrCartItemNotFound:    http.StatusNotFound,
	user.ErrUserNotFound:        http.StatusNotFound,

	// 409
	user.ErrEmailExists:             http.StatusConflict,
	order.ErrInsufficientStock:      http.StatusConflict,
	order.ErrNotCancellable:         http.StatusConflict,
	order.ErrNotDelivered:           http.StatusConflict,
	order.ErrReturnWindowClosed:     http.StatusConflict,
	order.ErrRefundPendingExists:    http.StatusConflict,
	order.ErrRefundAlreadyProcessed: http.StatusConflict,
	cart.ErrNotEnoughStock:          http.StatusConflict,
}

// writeError maps domain errors to HTTP statuses. Unknown errors are logged
// and returned as an opaque 500 so internals never leak to clients.
func writeError(c *gin.Context, err error) {
	for sentinel, status := range statusByErr {
		if errors.Is(err, sentinel) {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
	}

	logger.FromCtx(c.Request.Context()).Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
