package order

import (
	"fmt"
	"time"
)

// Wire shapes returned by the HTTP layer. Kept next to the domain model so
// the JSON contract and the ledger fields evolve together.

type ItemSummary struct {
	ProductID       uint    `json:"productId"`
	ProductName     string  `json:"productName"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`
	IsDiscounted    bool    `json:"isDiscounted"`
	Subtotal        float64 `json:"subtotal"`
}

type RefundSummary struct {
	ID          string     `json:"id"`
	ProductID   uint       `json:"productId"`
	ProductName string     `json:"productName"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requestedAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	ManagerNote *string    `json:"managerNote,omitempty"`
}

type AddressSummary struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Summary struct {
	ID                string          `json:"id"`
	UserID            uint            `json:"userId"`
	Items             []ItemSummary   `json:"items"`
	TotalAmount       float64         `json:"totalAmount"`
	Status            string          `json:"status"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
	IsReturnable      bool            `json:"isReturnable"`
	RefundDetails     []RefundSummary `json:"refundDetails"`
	ShippingAddress   AddressSummary  `json:"shippingAddress"`
	CreatedAt         time.Time       `json:"createdAt"`
	StatusUpdatedAt   time.Time       `json:"statusUpdatedAt"`
}

func ToSummary(o *Order, now time.Time) Summary {
	s := Summary{
		ID:                o.ID.String(),
		UserID:            o.UserID,
		Items:             make([]ItemSummary, 0, len(o.Items)),
		TotalAmount:       o.TotalAmount,
		Status:            string(o.Status),
		EstimatedDelivery: o.EstimatedDelivery(),
		IsReturnable:      o.IsReturnable(now),
		RefundDetails:     make([]RefundSummary, 0, len(o.Refunds)),
		ShippingAddress: AddressSummary{
			Name:       o.Address.Name,
			Address:    o.Address.Address,
			City:       o.Address.City,
			PostalCode: o.Address.PostalCode,
			Country:    o.Address.Country,
		},
		CreatedAt:       o.CreatedAt,
		StatusUpdatedAt: o.StatusUpdatedAt,
	}

	for _, it := range o.Items {
		s.Items = append(s.Items, ItemSummary{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
			IsDiscounted:    it.IsDiscounted,
			Subtotal:        it.Subtotal(),
		})
	}

	for _, rf := range o.Refunds {
		s.RefundDetails = append(s.RefundDetails, RefundSummary{
			ID:          rf.ID.String(),
			ProductID:   rf.ProductID,
			ProductName: rf.ProductName,
			Status:      string(rf.Status),
			RequestedAt: rf.RequestedAt,
			ResolvedAt:  rf.ResolvedAt,
			ManagerNote: rf.ManagerNote,
		})
	}

	return s
}

func ToSummaries(orders []*Order, now time.Time) []Summary {
	out := make([]Summary, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToSummary(o, now))
	}
	return out
}

// DeliveryProduct is one line on the delivery board, annotated with the
// latest refund state for that product.
type DeliveryProduct struct {
	ProductID    uint   `json:"productId"`
	ProductName  string `json:"productName"`
	Quantity     int    `json:"quantity"`
	RefundStatus string `json:"refundStatus"`
}

type DeliveryEntry struct {
	DeliveryID      string            `json:"deliveryId"`
	CustomerID      uint              `json:"customerId"`
	CustomerName    string            `json:"customerName"`
	Products        []DeliveryProduct `json:"products"`
	TotalPrice      float64           `json:"totalPrice"`
	DeliveryAddress string            `json:"deliveryAddress"`
	Status          string            `json:"status"`
}

func ToDeliveryEntry(d *DeliveryOrder) DeliveryEntry {
	o := d.Order
	e := DeliveryEntry{
		DeliveryID:   o.ID.String(),
		CustomerID:   o.UserID,
		CustomerName: d.CustomerName,
		Products:     make([]DeliveryProduct, 0, len(o.Items)),
		TotalPrice:   o.TotalAmount,
		DeliveryAddress: fmt.Sprintf("%s, %s, %s, %s, %s",
			o.Address.Name, o.Address.Address, o.Address.City,
			o.Address.PostalCode, o.Address.Country),
		Status: string(o.Status),
	}

	for _, it := range o.Items {
		status := "none"
		// Refunds are ordered oldest first; the last match is current.
		for _, rf := range o.Refunds {
			if rf.ProductID == it.ProductID {
				status = string(rf.Status)
			}
		}
		e.Products = append(e.Products, DeliveryProduct{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			Quantity:     it.Quantity,
			RefundStatus: status,
		})
	}
	return e
}

func ToDeliveryEntries(orders []*DeliveryOrder) []DeliveryEntry {
	out := make([]DeliveryEntry, 0, len(orders))
	for _, d := range orders {
		out = append(out, ToDeliveryEntry(d))
	}
	return out
}

// Invoice is the flat billing view used by the date-range export.
type Invoice struct {
	OrderID     string        `json:"orderId"`
	UserID      uint          `json:"userId"`
	Items       []ItemSummary `json:"items"`
	TotalAmount float64       `json:"totalAmount"`
	Status      string        `json:"status"`
	IssuedAt    time.Time     `json:"issuedAt"`
}

func ToInvoice(o *Order) Invoice {
	inv := Invoice{
		OrderID:     o.ID.String(),
		UserID:      o.UserID,
		Items:       make([]ItemSummary, 0, len(o.Items)),
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		IssuedAt:    o.CreatedAt,
	}
	for _, it := range o.Items {
		inv.Items = append(inv.Items, ItemSummary{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
			IsDiscounted:    it.IsDiscounted,
			Subtotal:        it.Subtotal(),
		})
	}
	return inv
}

func ToInvoices(orders []*Order) []Invoice {
	out := make([]Invoice, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToInvoice(o))
	}
	return out
}
