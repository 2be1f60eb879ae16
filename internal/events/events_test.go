package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"medstore/internal/events"
	"medstore/internal/logger"
	"medstore/internal/models"
	"medstore/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func placedOrder(medicineIDs ...string) *models.Order {
	o := &models.Order{ID: "order-1", OrderID: "ORD1", UserID: "user-1", Status: models.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("12.00")}
	for _, id := range medicineIDs {
		o.Items = append(o.Items, models.OrderItem{MedicineID: id, Name: id, Quantity: 1, Price: decimal.RequireFromString("6.00")})
	}
	return o
}

func TestProducer_PublishOrderPlaced(t *testing.T) {
	pub := new(mockPublisher)
	var body []byte
	pub.On("Publish", events.RoutingKeyOrderPlaced, mock.Anything).
		Run(func(args mock.Arguments) { body = args.Get(1).([]byte) }).
		Return(nil).Once()

	p := events.NewProducer(pub, logger.Discard())
	require.NoError(t, p.PublishOrderPlaced(context.Background(), placedOrder("med-1", "med-2")))
	pub.AssertExpectations(t)

	var event events.Event
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, events.RoutingKeyOrderPlaced, event.Type)
	assert.Equal(t, "order-1", event.AggregateID)
	assert.NotEmpty(t, event.ID)

	var data events.OrderPlacedData
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, "ORD1", data.OrderID)
	assert.Len(t, data.Items, 2)
	assert.Equal(t, "12", data.TotalAmount.String())
}

func TestProducer_PublishErrorAndDisabled(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", events.RoutingKeyOrderStatusChanged, mock.Anything).Return(errors.New("channel closed"))

	order := placedOrder("med-1")
	order.Status = models.OrderStatusDelivered
	err := events.NewProducer(pub, logger.Discard()).PublishOrderStatusChanged(context.Background(), order, models.OrderStatusPending)
	assert.ErrorContains(t, err, "channel closed")

	disabled := events.NewProducer(nil, logger.Discard())
	assert.NoError(t, disabled.PublishOrderPlaced(context.Background(), order))
}

func TestLowStockWatcher_Handle(t *testing.T) {
	repo := repositories.NewMockMedicineRepository()
	ctx := context.Background()
	low := &models.Medicine{Name: "Insulin", Quantity: 3, Price: decimal.RequireFromString("30")}
	plenty := &models.Medicine{Name: "Saline", Quantity: 80, Price: decimal.RequireFromString("2")}
	require.NoError(t, repo.Create(ctx, low))
	require.NoError(t, repo.Create(ctx, plenty))

	pub := new(mockPublisher)
	var body []byte
	pub.On("Publish", events.RoutingKeyOrderPlaced, mock.Anything).
		Run(func(args mock.Arguments) { body = args.Get(1).([]byte) }).
		Return(nil)
	require.NoError(t, events.NewProducer(pub, logger.Discard()).
		PublishOrderPlaced(ctx, placedOrder(low.ID, plenty.ID, "deleted-medicine")))

	watcher := events.NewLowStockWatcher(repo, logger.Discard())
	require.NoError(t, watcher.Handle(amqp.Delivery{Body: body}))

	var event events.Event
	require.NoError(t, json.Unmarshal(body, &event))
	var data events.OrderPlacedData
	require.NoError(t, json.Unmarshal(event.Data, &data))
	alerted, err := watcher.HandleOrderPlaced(ctx, data)
	require.NoError(t, err)
	require.Len(t, alerted, 1)
	assert.Equal(t, "Insulin", alerted[0].Name)
}

func TestLowStockWatcher_HandleRejectsGarbage(t *testing.T) {
	watcher := events.NewLowStockWatcher(repositories.NewMockMedicineRepository(), logger.Discard())
	assert.Error(t, watcher.Handle(amqp.Delivery{Body: []byte("not json")}))
	assert.NoError(t, watcher.Handle(amqp.Delivery{Body: []byte(`{"type":"order.status_changed","data":{}}`)}))
}
