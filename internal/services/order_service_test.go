package services_test

import (
	"context"
	"errors"
	"testing"

	"medstore/internal/apperrors"
	"medstore/internal/logger"
	"medstore/internal/models"
	"medstore/internal/repositories"
	"medstore/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testAddress = models.Address{Street: "221B Baker St", City: "London", State: "LDN", ZipCode: "NW16XE"}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func addMedicine(t *testing.T, repo repositories.MedicineRepository, name string, qty int, price string) *models.Medicine {
	t.Helper()
	m := &models.Medicine{Name: name, Manufacturer: "Acme", Quantity: qty, Price: dec(price)}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}

func fillCart(t *testing.T, repo repositories.CartRepository, userID string, lines ...models.CartItem) *models.Cart {
	t.Helper()
	cart := models.NewCart(userID)
	for _, l := range lines {
		cart.AddItem(l.MedicineID, l.Quantity, l.Price)
	}
	require.NoError(t, repo.Save(context.Background(), cart))
	return cart
}

func stockOf(t *testing.T, repo repositories.MedicineRepository, id string) int {
	t.Helper()
	m, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return m.Quantity
}

type orderFixture struct {
	service   *services.OrderService
	medicines *repositories.MockMedicineRepository
	carts     *repositories.MockCartRepository
	orders    *repositories.MockOrderRepository
	events    *MockEventPublisher
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		medicines: repositories.NewMockMedicineRepository(),
		carts:     repositories.NewMockCartRepository(),
		orders:    repositories.NewMockOrderRepository(),
		events:    new(MockEventPublisher),
	}
	f.service = services.NewOrderService(f.orders, f.carts, f.medicines, f.events, logger.Discard())
	return f
}

func (f *orderFixture) orderCount(t *testing.T) int64 {
	n, err := f.orders.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	_, err := f.service.PlaceOrder(ctx, "user-1", testAddress)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)

	fillCart(t, f.carts, "user-1")
	_, err = f.service.PlaceOrder(ctx, "user-1", testAddress)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)

	assert.Zero(t, f.orderCount(t))
	f.events.AssertNotCalled(t, "PublishOrderPlaced", mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_InsufficientStockLeavesStateUntouched(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	a := addMedicine(t, f.medicines, "Amoxicillin", 1, "12.50")
	b := addMedicine(t, f.medicines, "Bandage", 40, "1.00")
	fillCart(t, f.carts, "user-1",
		models.CartItem{MedicineID: b.ID, Quantity: 3, Price: b.Price},
		models.CartItem{MedicineID: a.ID, Quantity: 2, Price: a.Price},
	)

	_, err := f.service.PlaceOrder(ctx, "user-1", testAddress)
	require.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Amoxicillin")

	assert.Equal(t, 1, stockOf(t, f.medicines, a.ID))
	assert.Equal(t, 40, stockOf(t, f.medicines, b.ID))
	cart, err := f.carts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Zero(t, f.orderCount(t))
}

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	a := addMedicine(t, f.medicines, "Paracetamol", 20, "25.99")
	b := addMedicine(t, f.medicines, "Cough Syrup", 12, "7.25")
	cart := fillCart(t, f.carts, "user-1",
		models.CartItem{MedicineID: a.ID, Quantity: 2, Price: a.Price},
		models.CartItem{MedicineID: b.ID, Quantity: 4, Price: b.Price},
	)
	f.events.On("PublishOrderPlaced", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

	order, err := f.service.PlaceOrder(ctx, "user-1", testAddress)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(cart.TotalAmount))
	assert.Equal(t, "80.98", order.TotalAmount.StringFixed(2))
	assert.Regexp(t, `^ORD\d+$`, order.OrderID)
	assert.Equal(t, testAddress, order.DeliveryAddress)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Paracetamol", order.Items[0].Name)
	assert.True(t, order.Items[0].Price.Equal(dec("25.99")))

	assert.Equal(t, 18, stockOf(t, f.medicines, a.ID))
	assert.Equal(t, 8, stockOf(t, f.medicines, b.ID))
	m, err := f.medicines.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, m.IsLowStock)

	_, err = f.carts.Get(ctx, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualValues(t, 1, f.orderCount(t))
	f.events.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_SnapshotPriceWins(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	a := addMedicine(t, f.medicines, "Ibuprofen", 30, "5.00")
	fillCart(t, f.carts, "user-1", models.CartItem{MedicineID: a.ID, Quantity: 2, Price: a.Price})

	a.Price = dec("9.00")
	require.NoError(t, f.medicines.Update(ctx, a))
	f.events.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	order, err := f.service.PlaceOrder(ctx, "user-1", testAddress)
	require.NoError(t, err)
	assert.Equal(t, "10.00", order.TotalAmount.StringFixed(2))
	assert.True(t, order.Items[0].Price.Equal(dec("5.00")))
}

// racingMedicines lets a concurrent buyer empty one medicine between the stock check and the decrement.
type racingMedicines struct {
	*repositories.MockMedicineRepository
	victim string
	raced  bool
}

func (r *racingMedicines) AdjustQuantity(ctx context.Context, id string, delta int) error {
	if id == r.victim && !r.raced {
		r.raced = true
		m, err := r.MockMedicineRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := r.MockMedicineRepository.AdjustQuantity(ctx, id, -m.Quantity); err != nil {
			return err
		}
	}
	return r.MockMedicineRepository.AdjustQuantity(ctx, id, delta)
}

func TestOrderService_PlaceOrder_ConcurrentPurchaseIsCompensated(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	a := addMedicine(t, f.medicines, "Aspirin", 10, "3.00")
	b := addMedicine(t, f.medicines, "Betadine", 5, "4.00")
	fillCart(t, f.carts, "user-1",
		models.CartItem{MedicineID: a.ID, Quantity: 4, Price: a.Price},
		models.CartItem{MedicineID: b.ID, Quantity: 2, Price: b.Price},
	)
	racing := &racingMedicines{MockMedicineRepository: f.medicines, victim: b.ID}
	service := services.NewOrderService(f.orders, f.carts, racing, f.events, logger.Discard())

	_, err := service.PlaceOrder(ctx, "user-1", testAddress)
	require.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Betadine")

	assert.Equal(t, 10, stockOf(t, f.medicines, a.ID))
	assert.Equal(t, 0, stockOf(t, f.medicines, b.ID))
	assert.Zero(t, f.orderCount(t))
	cart, err := f.carts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	f.events.AssertNotCalled(t, "PublishOrderPlaced", mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_OrderCreateFails(t *testing.T) {
	medicines := repositories.NewMockMedicineRepository()
	carts := repositories.NewMockCartRepository()
	orders := new(MockOrderRepository)
	service := services.NewOrderService(orders, carts, medicines, nil, logger.Discard())
	ctx := context.Background()

	a := addMedicine(t, medicines, "Antacid", 9, "2.00")
	fillCart(t, carts, "user-1", models.CartItem{MedicineID: a.ID, Quantity: 1, Price: a.Price})
	orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(errors.New("disk full")).Once()

	_, err := service.PlaceOrder(ctx, "user-1", testAddress)
	require.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
	assert.Equal(t, 9, stockOf(t, medicines, a.ID))
	_, err = carts.Get(ctx, "user-1")
	assert.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_CartDeleteFailsKeepsOrder(t *testing.T) {
	medicines := repositories.NewMockMedicineRepository()
	orders := repositories.NewMockOrderRepository()
	carts := new(MockCartRepository)
	service := services.NewOrderService(orders, carts, medicines, nil, logger.Discard())
	ctx := context.Background()

	a := addMedicine(t, medicines, "Antiseptic", 15, "6.00")
	cart := models.NewCart("user-1")
	cart.AddItem(a.ID, 5, a.Price)
	carts.On("Get", mock.Anything, "user-1").Return(cart, nil).Once()
	carts.On("Delete", mock.Anything, "user-1").Return(errors.New("connection reset")).Once()

	_, err := service.PlaceOrder(ctx, "user-1", testAddress)
	require.ErrorIs(t, err, apperrors.ErrInternal)

	n, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 10, stockOf(t, medicines, a.ID))
	carts.AssertExpectations(t)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	a := addMedicine(t, f.medicines, "Loratadine", 50, "8.00")
	fillCart(t, f.carts, "user-1", models.CartItem{MedicineID: a.ID, Quantity: 1, Price: a.Price})
	f.events.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil)
	order, err := f.service.PlaceOrder(ctx, "user-1", testAddress)
	require.NoError(t, err)

	same, err := f.service.UpdateStatus(ctx, order.ID, "Pending")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, same.Status)

	_, err = f.service.UpdateStatus(ctx, order.ID, "Shipped")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f.events.On("PublishOrderStatusChanged", mock.Anything, mock.AnythingOfType("*models.Order"), models.OrderStatusPending).Return(nil).Once()
	delivered, err := f.service.UpdateStatus(ctx, order.ID, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, delivered.Status)

	_, err = f.service.UpdateStatus(ctx, order.ID, "Cancelled")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	_, err = f.service.UpdateStatus(ctx, order.ID, "Pending")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)

	_, err = f.service.UpdateStatus(ctx, "missing", "Delivered")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.events.AssertExpectations(t)
}

func TestOrderService_CancelDoesNotRestock(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	a := addMedicine(t, f.medicines, "Metformin", 20, "4.00")
	fillCart(t, f.carts, "user-1", models.CartItem{MedicineID: a.ID, Quantity: 5, Price: a.Price})
	f.events.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil)
	f.events.On("PublishOrderStatusChanged", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	order, err := f.service.PlaceOrder(ctx, "user-1", testAddress)
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(ctx, order.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, 15, stockOf(t, f.medicines, a.ID))
}

func TestOrderService_UserScopedQueries(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	a := addMedicine(t, f.medicines, "Omeprazole", 50, "11.00")
	f.events.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil)

	var placed []*models.Order
	for _, user := range []string{"user-1", "user-1", "user-2"} {
		fillCart(t, f.carts, user, models.CartItem{MedicineID: a.ID, Quantity: 1, Price: a.Price})
		o, err := f.service.PlaceOrder(ctx, user, testAddress)
		require.NoError(t, err)
		placed = append(placed, o)
	}

	mine, meta, err := f.service.ListUserOrders(ctx, "user-1", 1, 10)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.EqualValues(t, 2, meta.TotalItems)
	assert.Equal(t, placed[1].ID, mine[0].ID)

	_, err = f.service.GetUserOrder(ctx, "user-1", placed[2].ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	own, err := f.service.GetUserOrder(ctx, "user-2", placed[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "user-2", own.UserID)

	all, meta, err := f.service.ListOrders(ctx, "Pending", 1, 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.True(t, meta.HasNext)

	_, _, err = f.service.ListOrders(ctx, "lost", 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
