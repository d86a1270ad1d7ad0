package cart

import (
	"context"
	"errors"

	"greeneats-be/internal/logger"
	"greeneats-be/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	Get(ctx context.Context, userID uint) (*Cart, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int) error
	UpdateItem(ctx context.Context, userID, productID uint, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
}

type service struct {
	repo     Repository
	products product.Repository
}

func NewService(repo Repository, products product.Repository) Service {
	return &service{repo: repo, products: products}
}

func (s *service) Get(ctx context.Context, userID uint) (*Cart, error) {
	return s.repo.GetCart(ctx, userID)
}

func (s *service) AddItem(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if p.Stock < quantity {
		return ErrNotEnoughStock
	}

	if err := s.repo.UpsertItem(ctx, userID, productID, quantity); err != nil {
		logger.FromCtx(ctx).Error("failed to add cart item",
			zap.Uint("user_id", userID),
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) UpdateItem(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		// Setting quantity to zero is a removal.
		return s.repo.RemoveItem(ctx, userID, productID)
	}
	return s.repo.UpdateQuantity(ctx, userID, productID, quantity)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uint) error {
	return s.repo.RemoveItem(ctx, userID, productID)
}

func (s *service) Clear(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}
