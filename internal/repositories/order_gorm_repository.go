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

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create inserts a new order.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.AlreadyExists("order", "orderId", order.OrderID)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) filtered(ctx context.Context, filter OrderFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

// List returns one page of orders matching filter.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	q := r.filtered(ctx, filter).Order("created_at DESC")
	if filter.Page.Limit > 0 {
		q = q.Offset(filter.Page.Offset()).Limit(filter.Page.Limit)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus performs a compare-and-set on the status column.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}

	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.InvalidStatusTransition(string(order.Status), string(to))
	}
	return order, nil
}

// Delete removes an order by its ID.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

// HasDeliveredWithMedicine scans the delivered orders of userID for medicineID.
// Items are a JSON document, so the match is done in Go rather than in SQL.
func (r *GORMOrderRepository) HasDeliveredWithMedicine(ctx context.Context, userID, medicineID string) (bool, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Select("id", "items").
		Where("user_id = ? AND status = ?", userID, models.OrderStatusDelivered).
		Find(&orders).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up delivered orders of user %s: %w", userID, err)
	}
	for i := range orders {
		if orders[i].ContainsMedicine(medicineID) {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of orders.
func (r *GORMOrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}
