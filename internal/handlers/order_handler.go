package handlers

import (
	"log/slog"

	"medstore/internal/middleware"
	"medstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PlaceOrderRequest represents the request body for checking out the cart.
type PlaceOrderRequest struct {
	DeliveryAddress *AddressRequest `json:"deliveryAddress" validate:"required"`
}

// UpdateOrderStatusRequest represents the request body of PATCH /admin/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for orders and the admin dashboard.
type OrderHandler struct {
	orders    *services.OrderService
	dashboard *services.DashboardService
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *services.OrderService, dashboard *services.DashboardService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		dashboard: dashboard,
		validate:  newValidator(),
		logger:    logger,
	}
}

// RegisterRoutes registers customer order routes, admin order management and the dashboard.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, userOnly, adminOnly fiber.Handler) {
	userRoutes := router.Group("/orders", userOnly)
	userRoutes.Post("/", h.HandlePlaceOrder)
	userRoutes.Get("/", h.HandleListMyOrders)
	userRoutes.Get("/:id", h.HandleGetMyOrder)

	adminRoutes := router.Group("/admin/orders", adminOnly)
	adminRoutes.Get("/", h.HandleListOrders)
	adminRoutes.Get("/:id", h.HandleGetOrder)
	adminRoutes.Patch("/:id/status", h.HandleUpdateStatus)

	router.Get("/admin/dashboard/stats", adminOnly, h.HandleDashboardStats)
}

// HandlePlaceOrder turns the caller's cart into an order.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	order, err := h.orders.PlaceOrder(c.UserContext(), middleware.UserID(c), req.DeliveryAddress.toModel())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order placed successfully",
		"order":   order,
	})
}

func (h *OrderHandler) HandleListMyOrders(c *fiber.Ctx) error {
	orders, meta, err := h.orders.ListUserOrders(c.UserContext(), middleware.UserID(c), c.QueryInt("page", 1), c.QueryInt("limit"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"orders":     orders,
		"pagination": meta,
	})
}

func (h *OrderHandler) HandleGetMyOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetUserOrder(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": order})
}

// HandleListOrders lists every order, optionally filtered by ?status=.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, meta, err := h.orders.ListOrders(c.UserContext(), c.Query("status"), c.QueryInt("page", 1), c.QueryInt("limit"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"orders":     orders,
		"pagination": meta,
	})
}

func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "order": order})
}

func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateOrderStatusRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order status updated",
		"order":   order,
	})
}

func (h *OrderHandler) HandleDashboardStats(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}
