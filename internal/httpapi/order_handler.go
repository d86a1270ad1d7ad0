package httpapi

import (
	"net/http"
	"time"

	"greeneats-be/internal/order"
	"greeneats-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

type checkoutRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	o, err := h.orders.PlaceOrder(c.Request.Context(), mustUserID(c), order.ShippingAddress{
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order.ToSummary(o, time.Now())})
}

func (h *OrderHandler) History(c *gin.Context) {
	orders, err := h.orders.GetHistory(c.Request.Context(), mustUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": order.ToSummaries(orders, time.Now())})
}

// LatestStatus returns the most recent order, the storefront polls it for
// the tracking widget.
func (h *OrderHandler) LatestStatus(c *gin.Context) {
	o, err := h.orders.GetLatestStatus(c.Request.Context(), mustUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId":           o.ID,
		"status":            o.Status,
		"estimatedDelivery": o.EstimatedDelivery(),
		"statusUpdatedAt":   o.StatusUpdatedAt,
	})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	o, err := h.orders.GetOrder(ctx, mustUserID(c), utils.IsAdmin(ctx), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToSummary(o, time.Now())})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.orders.Cancel(c.Request.Context(), mustUserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToSummary(o, time.Now())})
}

type refundRequest struct {
	ProductID uint `json:"productId" binding:"required"`
}

func (h *OrderHandler) RequestRefund(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	o, err := h.orders.RequestRefund(c.Request.Context(), mustUserID(c), id, req.ProductID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order.ToSummary(o, time.Now())})
}

// -- Admin --

func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": order.ToSummaries(orders, time.Now())})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), id, order.OrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToSummary(o, time.Now())})
}

// DeliveryList is the operations view: every non-canceled order with
// customer and per-product refund state.
func (h *OrderHandler) DeliveryList(c *gin.Context) {
	orders, err := h.orders.DeliveryList(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": order.ToDeliveryEntries(orders)})
}

func (h *OrderHandler) ListRefundRequests(c *gin.Context) {
	orders, err := h.orders.ListRefundRequests(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": order.ToSummaries(orders, time.Now())})
}

func refundID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("refundId"))
	if err != nil {
		badRequest(c, "invalid refund id")
		return uuid.Nil, false
	}
	return id, true
}

type resolveRefundRequest struct {
	Note string `json:"note"`
}

func (h *OrderHandler) ApproveRefund(c *gin.Context) {
	id, ok := refundID(c)
	if !ok {
		return
	}

	var req resolveRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	o, err := h.orders.ApproveRefund(c.Request.Context(), id, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToSummary(o, time.Now())})
}

func (h *OrderHandler) RejectRefund(c *gin.Context) {
	id, ok := refundID(c)
	if !ok {
		return
	}

	var req resolveRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	o, err := h.orders.RejectRefund(c.Request.Context(), id, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToSummary(o, time.Now())})
}

func (h *OrderHandler) Invoices(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListBetween(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": order.ToInvoices(orders)})
}
