package services_test

import (
	"context"

	"medstore/internal/models"
	"medstore/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockMedicineRepository is a mock implementation of repositories.MedicineRepository
type MockMedicineRepository struct {
	mock.Mock
}

func (m *MockMedicineRepository) List(ctx context.Context, filter repositories.MedicineFilter) ([]models.Medicine, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Medicine), args.Get(1).(int64), args.Error(2)
}

func (m *MockMedicineRepository) GetByID(ctx context.Context, id string) (*models.Medicine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) Create(ctx context.Context, medicine *models.Medicine) error {
	return m.Called(ctx, medicine).Error(0)
}

func (m *MockMedicineRepository) Update(ctx context.Context, medicine *models.Medicine) error {
	return m.Called(ctx, medicine).Error(0)
}

func (m *MockMedicineRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMedicineRepository) AdjustQuantity(ctx context.Context, id string, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

func (m *MockMedicineRepository) AddReview(ctx context.Context, id string, review models.Review) (*models.Medicine, error) {
	args := m.Called(ctx, id, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMedicineRepository) CountLowStock(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepository) HasDeliveredWithMedicine(ctx context.Context, userID, medicineID string) (bool, error) {
	args := m.Called(ctx, userID, medicineID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of services.OrderEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockEventPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, old models.OrderStatus) error {
	return m.Called(ctx, order, old).Error(0)
}
