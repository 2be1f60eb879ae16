package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"medstore/internal/apperrors"
	"medstore/internal/metrics"
	"medstore/internal/models"
	"medstore/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartMedicine is the catalog view of a cart line.
type CartMedicine struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CartLine is a cart item resolved against the catalog. Medicine is nil when
// the medicine has been removed from the catalog since it was added.
type CartLine struct {
	Medicine *CartMedicine   `json:"medicine"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView is the response shape of GET /cart.
type CartView struct {
	ID          string          `json:"id,omitempty"`
	User        string          `json:"user"`
	Items       []CartLine      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// CartService handles business logic related to carts.
type CartService struct {
	carts     repositories.CartRepository
	medicines repositories.MedicineRepository
	logger    *slog.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, medicines repositories.MedicineRepository, logger *slog.Logger) *CartService {
	return &CartService{
		carts:     carts,
		medicines: medicines,
		logger:    logger,
	}
}

// load returns the stored cart, or nil when the user has none.
func (s *CartService) load(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

// GetCart returns the user's cart, or the canonical empty cart when none exists.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return models.NewCart(userID), nil
	}
	return cart, nil
}

// GetCartView returns the cart with every line resolved against the current catalog.
func (s *CartService) GetCartView(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		ID:          cart.ID,
		User:        cart.UserID,
		Items:       make([]CartLine, 0, len(cart.Items)),
		TotalAmount: cart.TotalAmount,
	}
	for _, it := range cart.Items {
		line := CartLine{
			Quantity: it.Quantity,
			Price:    it.Price,
			Subtotal: it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
		m, err := s.medicines.GetByID(ctx, it.MedicineID)
		switch {
		case err == nil:
			line.Medicine = &CartMedicine{ID: m.ID, Name: m.Name, Image: m.Image, Price: m.Price, Quantity: m.Quantity}
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
		view.Items = append(view.Items, line)
	}
	return view, nil
}

// AddItem adds quantity of a medicine to the cart, creating the cart on first use.
func (s *CartService) AddItem(ctx context.Context, userID, medicineID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("Invalid quantity", map[string]string{"quantity": "must be at least 1"})
	}

	medicine, err := s.medicines.GetByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if quantity > medicine.Quantity {
		return nil, apperrors.InsufficientStock(medicine.Name)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.AddItem(medicine.ID, quantity, medicine.Price)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	metrics.CartMutations.WithLabelValues("add").Inc()
	return cart, nil
}

// UpdateItem sets the quantity of an existing line; quantity <= 0 removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, medicineID string, quantity int) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cart.SetQuantity(medicineID, quantity) {
		return nil, apperrors.ItemNotFound(medicineID)
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	metrics.CartMutations.WithLabelValues("update").Inc()
	return cart, nil
}

// RemoveItem drops a line from the cart. Removing an absent line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, medicineID string) (*models.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return models.NewCart(userID), nil
	}
	cart.RemoveItem(medicineID)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	metrics.CartMutations.WithLabelValues("remove").Inc()
	return cart, nil
}

// ClearCart deletes the cart entirely.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.carts.Delete(ctx, userID); err != nil {
		return err
	}
	metrics.CartMutations.WithLabelValues("clear").Inc()
	return nil
}
