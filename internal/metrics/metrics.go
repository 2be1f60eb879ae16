package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medstore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medstore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// OrdersPlaced counts orders that completed the whole placement workflow.
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medstore_orders_placed_total",
		Help: "Total number of successfully placed orders",
	})

	// OrderPlacementFailures counts rejected placements by reason (empty_cart, insufficient_stock, ...).
	OrderPlacementFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medstore_order_placement_failures_total",
			Help: "Total number of order placements that failed",
		},
		[]string{"reason"},
	)

	// StockCompensations counts decrement passes that had to be rolled back.
	StockCompensations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medstore_stock_compensations_total",
		Help: "Total number of stock decrements restored after a concurrent purchase won the race",
	})

	OrderStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medstore_order_status_changes_total",
			Help: "Total number of order status transitions",
		},
		[]string{"status"},
	)

	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medstore_cart_mutations_total",
			Help: "Total number of cart mutations",
		},
		[]string{"op"},
	)

	ReviewsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medstore_reviews_added_total",
		Help: "Total number of accepted reviews",
	})

	// LowStockAlerts counts low-stock notices raised by the order event consumer.
	LowStockAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medstore_low_stock_alerts_total",
		Help: "Total number of low stock alerts raised after orders",
	})

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medstore_events_published_total",
			Help: "Total number of domain events published, by routing key and result",
		},
		[]string{"routing_key", "result"},
	)
)

// Middleware records request count and latency per route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = "unknown"
		}

		httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
