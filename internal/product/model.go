package product

import "time"

type Product struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Price              float64   `json:"price"`
	OriginalPrice      *float64  `json:"originalPrice,omitempty"`
	DiscountPercentage float64   `json:"discountPercentage"`
	Category           string    `json:"category"`
	Brand              string    `json:"brand"`
	Stock              int       `json:"stock"`
	ImageURL           string    `json:"imageUrl"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// IsDiscounted reports whether a discount is currently active.
func (p *Product) IsDiscounted() bool {
	return p.DiscountPercentage > 0
}

type CreateInput struct {
	Name               string
	Description        string
	Price              float64
	DiscountPercentage float64
	Category           string
	Brand              string
	Stock              int
	ImageURL           string
}
