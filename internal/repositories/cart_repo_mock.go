package repositories

import (
	"context"
	"sync"
	"time"

	"medstore/internal/apperrors"
	"medstore/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

func copyCart(c models.Cart) models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return c
}

// Get returns the cart of userID.
func (r *MockCartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, apperrors.NotFound("cart", userID)
	}
	cart = copyCart(cart)
	return &cart, nil
}

// Save stores a copy of cart.
func (r *MockCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if cart.ID == "" {
		cart.ID = uuid.New().String()
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	if err := cart.BeforeSave(nil); err != nil {
		return err
	}
	r.carts[cart.UserID] = copyCart(*cart)
	return nil
}

// Delete removes the cart of userID if there is one.
func (r *MockCartRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
