package order

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusInTransit  OrderStatus = "in-transit"
	StatusDelivered  OrderStatus = "delivered"
	StatusRefunded   OrderStatus = "refunded"
	StatusCanceled   OrderStatus = "canceled"
)

// operationalStatuses are the only targets staff may set directly. Canceled
// and refunded are reachable solely through CancelOrder and the refund
// sub-ledger, which enforce restocking and total adjustments.
var operationalStatuses = map[OrderStatus]bool{
	StatusProcessing: true,
	StatusInTransit:  true,
	StatusDelivered:  true,
}

func (s OrderStatus) Operational() bool {
	return operationalStatuses[s]
}

type RefundStatus string

const (
	RefundPending  RefundStatus = "pending"
	RefundApproved RefundStatus = "approved"
	RefundRejected RefundStatus = "rejected"
)

// ReturnWindow is how long after delivery a line item stays refundable.
const ReturnWindow = 30 * 24 * time.Hour

type ShippingAddress struct {
	Name       string
	Address    string
	City       string
	PostalCode string
	Country    string
}

func (a ShippingAddress) Complete() bool {
	return a.Name != "" && a.Address != "" && a.City != "" &&
		a.PostalCode != "" && a.Country != ""
}

// Item is one order line. PriceAtPurchase is frozen at checkout and never
// recomputed, so later catalog price edits cannot rewrite history.
type Item struct {
	ID              uint
	OrderID         uuid.UUID
	ProductID       uint
	ProductName     string
	Quantity        int
	PriceAtPurchase float64
	IsDiscounted    bool
}

func (it Item) Subtotal() float64 {
	return it.PriceAtPurchase * float64(it.Quantity)
}

// Refund is one entry in the per-order refund sub-ledger. Each entry moves
// pending -> approved or pending -> rejected and is terminal after that.
type Refund struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uint
	ProductName string
	Status      RefundStatus
	RequestedAt time.Time
	ResolvedAt  *time.Time
	ManagerNote *string
}

type Order struct {
	ID              uuid.UUID
	UserID          uint
	Items           []Item
	Refunds         []Refund
	TotalAmount     float64
	Status          OrderStatus
	Address         ShippingAddress
	CreatedAt       time.Time
	StatusUpdatedAt time.Time
}

// DeliveryOrder pairs an order with its customer for the operations
// delivery board.
type DeliveryOrder struct {
	Order        *Order
	CustomerName string
}

// ItemFor returns the order line for a product, or nil when the product is
// not part of this order.
func (o *Order) ItemFor(productID uint) *Item {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

// HasPendingRefund reports whether an unresolved refund request exists for
// the product. Rejected entries do not block a re-request, so the check is
// keyed by product + pending status, not by product uniqueness.
func (o *Order) HasPendingRefund(productID uint) bool {
	for _, r := range o.Refunds {
		if r.ProductID == productID && r.Status == RefundPending {
			return true
		}
	}
	return false
}

// RefundByID finds a sub-ledger entry by its identifier.
func (o *Order) RefundByID(refundID uuid.UUID) *Refund {
	for i := range o.Refunds {
		if o.Refunds[i].ID == refundID {
			return &o.Refunds[i]
		}
	}
	return nil
}

// AllItemsRefunded reports whether every line item carries an approved
// refund; extra is counted as approved even if not yet persisted, so the
// caller can evaluate the state an in-flight approval would produce.
func (o *Order) AllItemsRefunded(extra uuid.UUID) bool {
	for _, it := range o.Items {
		approved := false
		for _, r := range o.Refunds {
			if r.ProductID != it.ProductID {
				continue
			}
			if r.Status == RefundApproved || r.ID == extra {
				approved = true
				break
			}
		}
		if !approved {
			return false
		}
	}
	return true
}

// IsReturnable reports whether refunds may still be requested: delivered and
// within the return window measured from the delivery timestamp.
func (o *Order) IsReturnable(now time.Time) bool {
	return o.Status == StatusDelivered && !now.After(o.StatusUpdatedAt.Add(ReturnWindow))
}

// EstimatedDelivery is the customer-facing delivery hint keyed off status.
func (o *Order) EstimatedDelivery() string {
	switch o.Status {
	case StatusProcessing:
		return "Within 5-7 business days"
	case StatusInTransit:
		return "In transit, expected in 2-3 days"
	case StatusRefunded:
		return "Refunded"
	default:
		return "Delivered"
	}
}
