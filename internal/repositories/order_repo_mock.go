package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"medstore/internal/apperrors"
	"medstore/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	seq    map[string]int
	next   int
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		seq:    make(map[string]int),
	}
}

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem{}, o.Items...)
	return o
}

// Create adds a new order.
func (r *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for _, o := range r.orders {
		if o.OrderID == order.OrderID {
			return apperrors.AlreadyExists("order", "orderId", order.OrderID)
		}
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.next++
	r.seq[order.ID] = r.next
	r.orders[order.ID] = copyOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	order = copyOrder(order)
	return &order, nil
}

// List returns orders matching filter, newest first.
func (r *MockOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		matched = append(matched, copyOrder(o))
	}
	sort.Slice(matched, func(i, j int) bool {
		return r.seq[matched[i].ID] > r.seq[matched[j].ID]
	})

	total := int64(len(matched))
	if filter.Page.Limit > 0 {
		start := filter.Page.Offset()
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Page.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

// UpdateStatus changes the status of an order still in status from.
func (r *MockOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	if order.Status != from {
		return nil, apperrors.InvalidStatusTransition(string(order.Status), string(to))
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	out := copyOrder(order)
	return &out, nil
}

// Delete removes an order.
func (r *MockOrderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return apperrors.NotFound("order", id)
	}
	delete(r.orders, id)
	delete(r.seq, id)
	return nil
}

// HasDeliveredWithMedicine reports whether userID received an order containing medicineID.
func (r *MockOrderRepository) HasDeliveredWithMedicine(ctx context.Context, userID, medicineID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.UserID == userID && o.Status == models.OrderStatusDelivered && o.ContainsMedicine(medicineID) {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of stored orders.
func (r *MockOrderRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}
