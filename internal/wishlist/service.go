package wishlist

import (
	"context"

	"greeneats-be/internal/logger"
	"greeneats-be/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	Add(ctx context.Context, userID, productID uint) ([]*product.Product, error)
	Remove(ctx context.Context, userID, productID uint) ([]*product.Product, error)
	List(ctx context.Context, userID uint) ([]*product.Product, error)
}

type service struct {
	repo     Repository
	products product.Repository
}

func NewService(repo Repository, products product.Repository) Service {
	return &service{repo: repo, products: products}
}

// Add saves a product and returns the updated wishlist. The product must
// exist in the catalog; saving twice is a no-op.
func (s *service) Add(ctx context.Context, userID, productID uint) ([]*product.Product, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.repo.Add(ctx, userID, productID); err != nil {
		logger.FromCtx(ctx).Error("failed to add wishlist item",
			zap.Uint("user_id", userID),
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID, productID uint) ([]*product.Product, error) {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

func (s *service) List(ctx context.Context, userID uint) ([]*product.Product, error) {
	return s.repo.List(ctx, userID)
}
