package service

import (
	"context"
	"errors"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"

	"go.uber.org/zap"
)

type CartService struct {
	carts repository.CartRepository
	log   *zap.Logger
}

func NewCartService(carts repository.CartRepository, log *zap.Logger) *CartService {
	return &CartService{carts: carts, log: log.Named("cart")}
}

// GetCart returns the saved items, or an empty list when the user has no cart.
func (s *CartService) GetCart(ctx context.Context, email string) ([]model.LineItem, error) {
	cart, err := s.carts.GetByUserEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []model.LineItem{}, nil
		}
		return nil, internalError(s.log, "Failed to load cart", err, zap.String("user_email", email))
	}
	if cart.Items == nil {
		return []model.LineItem{}, nil
	}
	return cart.Items, nil
}

// SaveCart replaces the user's items wholesale. An empty list is a valid
// cart; a nil one is a missing field.
func (s *CartService) SaveCart(ctx context.Context, email string, items []model.LineItem) error {
	if email == "" || items == nil {
		return apperror.Validation("Missing user_email or items")
	}

	if err := s.carts.Save(ctx, email, items); err != nil {
		return internalError(s.log, "Failed to save cart", err, zap.String("user_email", email))
	}
	return nil
}
