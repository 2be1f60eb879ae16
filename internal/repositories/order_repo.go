package repositories

import (
	"context"

	"medstore/internal/models"
	"medstore/internal/pagination"
)

// OrderFilter narrows an order listing. Empty fields match everything.
type OrderFilter struct {
	UserID string
	Status models.OrderStatus
	Page   pagination.Params
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// List returns newest orders first together with the total match count.
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	// UpdateStatus moves an order to status `to` only while it is still in status `from`.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error)
	// Delete exists solely to undo an order whose stock could not be reserved.
	Delete(ctx context.Context, id string) error
	HasDeliveredWithMedicine(ctx context.Context, userID, medicineID string) (bool, error)
	Count(ctx context.Context) (int64, error)
}
