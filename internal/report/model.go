package report

import (
	"time"

	"greeneats-be/internal/order"

	"github.com/google/uuid"
)

// Line is one order line flattened for aggregation, with the catalog fields
// the formulas need joined in.
type Line struct {
	ProductName     string
	Category        string
	Quantity        int
	PriceAtPurchase float64
	CurrentPrice    float64
	OriginalPrice   *float64
	RefundApproved  bool
}

// EffectivePrice prefers the frozen checkout price and falls back to the
// live catalog price for legacy rows written before prices were frozen.
func (l Line) EffectivePrice() float64 {
	if l.PriceAtPurchase > 0 {
		return l.PriceAtPurchase
	}
	return l.CurrentPrice
}

// CostBasis is the acquisition-side price: the pre-discount price when the
// line sold at a discount, otherwise the effective price.
func (l Line) CostBasis() float64 {
	if l.OriginalPrice != nil && *l.OriginalPrice > 0 {
		return *l.OriginalPrice
	}
	return l.EffectivePrice()
}

type ReportOrder struct {
	ID        uuid.UUID
	Status    order.OrderStatus
	CreatedAt time.Time
	Lines     []Line
}

type RevenueReport struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Revenue    float64   `json:"revenue"`
	Cost       float64   `json:"cost"`
	Net        float64   `json:"net"`
	Profit     float64   `json:"profit"`
	Loss       float64   `json:"loss"`
	OrderCount int       `json:"orderCount"`

	// Units sold per product name across the counted orders. Lines with an
	// approved refund reverse revenue and cost but the units still shipped,
	// so they stay in the tally.
	ProductDistribution map[string]int `json:"productDistribution"`
}

type ProductShare struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Share       float64 `json:"share"`
}
