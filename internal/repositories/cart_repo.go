package repositories

import (
	"context"

	"medstore/internal/models"
)

// CartRepository defines the interface for cart data access.
// Get returns an apperrors NotFound error when the user has no cart.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, userID string) error
}
