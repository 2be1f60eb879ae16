package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"medstore/internal/apperrors"
	"medstore/internal/metrics"
	"medstore/internal/models"

	"github.com/streadway/amqp"
)

// LowStockQueue is the queue the low-stock watcher consumes order.placed events from.
const LowStockQueue = "medstore.low_stock"

// MedicineReader is the part of the catalog the watcher needs.
type MedicineReader interface {
	GetByID(ctx context.Context, id string) (*models.Medicine, error)
}

// LowStockWatcher raises an alert for every medicine an order pushed to or below the low-stock threshold.
type LowStockWatcher struct {
	medicines MedicineReader
	logger    *slog.Logger
}

// NewLowStockWatcher creates a new LowStockWatcher.
func NewLowStockWatcher(medicines MedicineReader, logger *slog.Logger) *LowStockWatcher {
	return &LowStockWatcher{
		medicines: medicines,
		logger:    logger,
	}
}

// HandleOrderPlaced checks the stock of every line of an order.placed event.
// It returns the low-stock medicines it alerted on.
func (w *LowStockWatcher) HandleOrderPlaced(ctx context.Context, data OrderPlacedData) ([]models.Medicine, error) {
	var low []models.Medicine
	for _, it := range data.Items {
		m, err := w.medicines.GetByID(ctx, it.MedicineID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return low, fmt.Errorf("check stock of %s: %w", it.MedicineID, err)
		}
		if !m.IsLowStock {
			continue
		}
		metrics.LowStockAlerts.Inc()
		w.logger.WarnContext(ctx, "medicine is low on stock",
			slog.String("medicine_id", m.ID),
			slog.String("name", m.Name),
			slog.Int("quantity", m.Quantity),
			slog.String("order_id", data.OrderID),
		)
		low = append(low, *m)
	}
	return low, nil
}

// Handle decodes a raw delivery; events other than order.placed are acknowledged and ignored.
func (w *LowStockWatcher) Handle(msg amqp.Delivery) error {
	var event Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("decode event envelope: %w", err)
	}
	if event.Type != RoutingKeyOrderPlaced {
		return nil
	}

	var data OrderPlacedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	_, err := w.HandleOrderPlaced(context.Background(), data)
	return err
}
