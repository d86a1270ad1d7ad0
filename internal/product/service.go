package product

import (
	"context"

	"greeneats-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Product, error)
	Get(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, category *string) ([]*Product, error)
	SetStock(ctx context.Context, id uint, stock int) error
	ApplyDiscount(ctx context.Context, id uint, percentage float64) (*Product, error)
	ClearDiscount(ctx context.Context, id uint) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, ErrInvalidStock
	}
	if input.DiscountPercentage < 0 || input.DiscountPercentage > 100 {
		return nil, ErrInvalidDiscount
	}

	p := &Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Brand:       input.Brand,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
	}

	if input.DiscountPercentage > 0 {
		original := input.Price
		p.OriginalPrice = &original
		p.DiscountPercentage = input.DiscountPercentage
		p.Price = original * (1 - input.DiscountPercentage/100)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		logger.FromCtx(ctx).Error("failed to create product",
			zap.String("name", input.Name), zap.Error(err))
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.Uint("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, category *string) ([]*Product, error) {
	return s.repo.List(ctx, category)
}

func (s *service) SetStock(ctx context.Context, id uint, stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	return s.repo.UpdateStock(ctx, id, stock)
}

// ApplyDiscount reduces the sale price while preserving the original price.
// The frozen price_at_purchase on existing orders is never touched.
func (s *service) ApplyDiscount(ctx context.Context, id uint, percentage float64) (*Product, error) {
	if percentage <= 0 || percentage > 100 {
		return nil, ErrInvalidDiscount
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	base := p.Price
	if p.OriginalPrice != nil {
		base = *p.OriginalPrice
	}

	p.OriginalPrice = &base
	p.DiscountPercentage = percentage
	p.Price = base * (1 - percentage/100)

	if err := s.repo.UpdatePricing(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ClearDiscount(ctx context.Context, id uint) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.OriginalPrice != nil {
		p.Price = *p.OriginalPrice
	}
	p.OriginalPrice = nil
	p.DiscountPercentage = 0

	if err := s.repo.UpdatePricing(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
