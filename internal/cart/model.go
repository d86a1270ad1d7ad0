package cart

import "time"

// Item is one (product, quantity) line in a user's cart. Product fields are
// joined in for display; checkout re-fetches products before committing.
type Item struct {
	ProductID   uint      `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Stock       int       `json:"stock"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Cart struct {
	UserID uint   `json:"userId"`
	Items  []Item `json:"items"`
}

// Subtotal is a display-only figure; the authoritative total is frozen by
// the order ledger at checkout.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}
