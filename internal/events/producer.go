package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"medstore/internal/metrics"
	"medstore/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routing keys of order domain events.
const (
	RoutingKeyOrderPlaced        = "order.placed"
	RoutingKeyOrderStatusChanged = "order.status_changed"
)

// Event is the envelope every message on the exchange is wrapped in.
type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Data        json.RawMessage `json:"data"`
}

// OrderPlacedData is the payload of an order.placed event.
type OrderPlacedData struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Items       []OrderItemData `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// OrderItemData is the event payload for an order line.
type OrderItemData struct {
	MedicineID string          `json:"medicine_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// OrderStatusChangedData is the payload of an order.status_changed event.
type OrderStatusChangedData struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// Publisher is the transport the producer writes to. *rabbitmq.Client satisfies it.
type Publisher interface {
	Publish(routingKey string, body []byte) error
}

// Producer publishes order domain events. A Producer with a nil Publisher
// only logs, which is how the API runs when messaging is disabled.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

func newEvent(eventType, aggregateID string, data interface{}) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return json.Marshal(Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Data:        payload,
	})
}

func (p *Producer) publish(ctx context.Context, routingKey, aggregateID string, data interface{}) error {
	if p.publisher == nil {
		p.logger.DebugContext(ctx, "messaging disabled, event dropped", slog.String("routing_key", routingKey))
		return nil
	}

	body, err := newEvent(routingKey, aggregateID, data)
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(routingKey, body); err != nil {
		metrics.EventsPublished.WithLabelValues(routingKey, "error").Inc()
		return fmt.Errorf("publish %s event: %w", routingKey, err)
	}
	metrics.EventsPublished.WithLabelValues(routingKey, "ok").Inc()

	p.logger.DebugContext(ctx, "published event",
		slog.String("routing_key", routingKey),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishOrderPlaced publishes an order.placed event with the full order snapshot.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, it := range order.Items {
		items[i] = OrderItemData{
			MedicineID: it.MedicineID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      it.Price,
		}
	}
	return p.publish(ctx, RoutingKeyOrderPlaced, order.ID, OrderPlacedData{
		ID:          order.ID,
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		Items:       items,
		TotalAmount: order.TotalAmount,
	})
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *models.Order, old models.OrderStatus) error {
	return p.publish(ctx, RoutingKeyOrderStatusChanged, order.ID, OrderStatusChangedData{
		ID:        order.ID,
		OrderID:   order.OrderID,
		OldStatus: string(old),
		NewStatus: string(order.Status),
	})
}
