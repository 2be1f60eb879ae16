package repositories

import (
	"context"
	"errors"
	"fmt"

	"medstore/internal/apperrors"
	"medstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// Get retrieves the cart owned by userID.
func (r *GORMCartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("failed to get cart of user %s: %w", userID, err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Save inserts the cart on first use and overwrites it afterwards.
func (r *GORMCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Save(cart).Error; err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart of userID. Deleting a missing cart is not an error.
func (r *GORMCartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Cart{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete cart of user %s: %w", userID, err)
	}
	return nil
}
