package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"medstore/internal/apperrors"
	"medstore/internal/metrics"
	"medstore/internal/models"
	"medstore/internal/pagination"
	"medstore/internal/repositories"
)

const orderIDAttempts = 3

// OrderEventPublisher receives order lifecycle events. *events.Producer implements it.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, old models.OrderStatus) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders    repositories.OrderRepository
	carts     repositories.CartRepository
	medicines repositories.MedicineRepository
	events    OrderEventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(
	orders repositories.OrderRepository,
	carts repositories.CartRepository,
	medicines repositories.MedicineRepository,
	events OrderEventPublisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		medicines: medicines,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

func placementFailure(reason string, err error) error {
	metrics.OrderPlacementFailures.WithLabelValues(reason).Inc()
	return err
}

// PlaceOrder turns the user's cart into an order.
//
// Every line is checked against the current stock before anything is written.
// The order is then persisted, stock is decremented line by line with a guarded
// update and finally the cart is deleted. A decrement rejected because a
// concurrent purchase consumed the stock restores the lines already taken,
// removes the new order and leaves the cart untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, address models.Address) (*models.Order, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, placementFailure("empty_cart", apperrors.EmptyCart())
		}
		return nil, placementFailure("internal", fmt.Errorf("failed to load cart: %w", err))
	}
	if cart.IsEmpty() {
		return nil, placementFailure("empty_cart", apperrors.EmptyCart())
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		medicine, err := s.medicines.GetByID(ctx, line.MedicineID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, placementFailure("medicine_not_found", err)
			}
			return nil, placementFailure("internal", err)
		}
		if medicine.Quantity < line.Quantity {
			return nil, placementFailure("insufficient_stock", apperrors.InsufficientStock(medicine.Name))
		}
		items = append(items, models.OrderItem{
			MedicineID: medicine.ID,
			Name:       medicine.Name,
			Quantity:   line.Quantity,
			Price:      line.Price,
		})
	}

	now := s.now()
	order := &models.Order{
		UserID:          userID,
		Items:           items,
		TotalAmount:     models.CartTotal(cart.Items),
		Status:          models.OrderStatusPending,
		BookingDate:     now,
		DeliveryAddress: address,
	}
	if err := s.createWithOrderID(ctx, order, now); err != nil {
		return nil, placementFailure("internal", apperrors.Internal("Failed to place order", err))
	}

	for i, line := range items {
		err := s.medicines.AdjustQuantity(ctx, line.MedicineID, -line.Quantity)
		if err == nil {
			continue
		}
		s.compensate(ctx, order, items[:i])
		switch {
		case errors.Is(err, apperrors.ErrInsufficientStock):
			return nil, placementFailure("insufficient_stock", err)
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, placementFailure("medicine_not_found", err)
		default:
			return nil, placementFailure("internal", apperrors.Internal("Failed to reserve stock", err))
		}
	}

	if err := s.carts.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "order placed but cart was not cleared",
			slog.String("order_id", order.OrderID),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, placementFailure("cart_cleanup", apperrors.Internal("Order was placed but the cart could not be cleared", err))
	}

	metrics.OrdersPlaced.Inc()
	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.OrderID),
		slog.String("user_id", userID),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)
	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, order); err != nil {
			s.logger.WarnContext(ctx, "failed to publish order placed event",
				slog.String("order_id", order.OrderID), slog.Any("error", err))
		}
	}
	return order, nil
}

// createWithOrderID retries on the rare orderId collision within the same millisecond.
func (s *OrderService) createWithOrderID(ctx context.Context, order *models.Order, now time.Time) error {
	var err error
	for attempt := 0; attempt < orderIDAttempts; attempt++ {
		order.OrderID = models.GenerateOrderID(now)
		if err = s.orders.Create(ctx, order); !errors.Is(err, apperrors.ErrAlreadyExists) {
			return err
		}
	}
	return err
}

// compensate puts back the stock of the lines already decremented and removes the order.
// Failures are logged; the caller reports the original error.
func (s *OrderService) compensate(ctx context.Context, order *models.Order, taken []models.OrderItem) {
	metrics.StockCompensations.Inc()
	for _, line := range taken {
		if err := s.medicines.AdjustQuantity(ctx, line.MedicineID, line.Quantity); err != nil {
			s.logger.ErrorContext(ctx, "failed to restore stock",
				slog.String("order_id", order.OrderID),
				slog.String("medicine_id", line.MedicineID),
				slog.Int("quantity", line.Quantity),
				slog.Any("error", err),
			)
		}
	}
	if err := s.orders.Delete(ctx, order.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove order after stock conflict",
			slog.String("order_id", order.OrderID), slog.Any("error", err))
	}
}

// ListUserOrders returns the user's own orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string, page, limit int) ([]models.Order, pagination.Meta, error) {
	params := pagination.New(page, limit, adminPageSize)
	orders, total, err := s.orders.List(ctx, repositories.OrderFilter{UserID: userID, Page: params})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return orders, params.Meta(total), nil
}

// GetUserOrder returns an order only if it belongs to userID.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("order", id)
	}
	return order, nil
}

func parseStatus(status string) (models.OrderStatus, error) {
	s, ok := models.ParseOrderStatus(status)
	if !ok {
		return "", apperrors.Validation("Invalid order status", map[string]string{
			"status": "must be one of Pending, Delivered, Cancelled",
		})
	}
	return s, nil
}

// ListOrders returns all orders, optionally restricted to one status.
func (s *OrderService) ListOrders(ctx context.Context, status string, page, limit int) ([]models.Order, pagination.Meta, error) {
	filter := repositories.OrderFilter{Page: pagination.New(page, limit, adminPageSize)}
	if status != "" {
		st, err := parseStatus(status)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		filter.Status = st
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return orders, filter.Page.Meta(total), nil
}

// GetOrder retrieves any order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// UpdateStatus moves a Pending order to Delivered or Cancelled. Cancelling does not restock.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	next, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusPending && next == models.OrderStatusPending {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, apperrors.InvalidStatusTransition(string(order.Status), string(next))
	}

	previous := order.Status
	updated, err := s.orders.UpdateStatus(ctx, id, previous, next)
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusChanges.WithLabelValues(string(next)).Inc()
	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", updated.OrderID),
		slog.String("from", string(previous)),
		slog.String("to", string(next)),
	)
	if s.events != nil {
		if err := s.events.PublishOrderStatusChanged(ctx, updated, previous); err != nil {
			s.logger.WarnContext(ctx, "failed to publish order status event",
				slog.String("order_id", updated.OrderID), slog.Any("error", err))
		}
	}
	return updated, nil
}
