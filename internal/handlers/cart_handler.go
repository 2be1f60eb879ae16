package handlers

import (
	"log/slog"

	"medstore/internal/middleware"
	"medstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddToCartRequest represents the request body of POST /cart/add.
type AddToCartRequest struct {
	MedicineID string `json:"medicineId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

// UpdateCartRequest represents the request body of PUT /cart/update. A quantity of 0 or less removes the line.
type UpdateCartRequest struct {
	MedicineID string `json:"medicineId" validate:"required"`
	Quantity   int    `json:"quantity"`
}

// CartHandler handles HTTP requests for the current user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes; all of them require a signed in customer.
func (h *CartHandler) RegisterRoutes(router fiber.Router, userOnly fiber.Handler) {
	cartRoutes := router.Group("/cart", userOnly)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddItem)
	cartRoutes.Put("/update", h.HandleUpdateItem)
	cartRoutes.Delete("/remove/:medicineId", h.HandleRemoveItem)
	cartRoutes.Delete("/clear", h.HandleClearCart)
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCartView(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "cart": cart})
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	cart, err := h.service.AddItem(c.UserContext(), middleware.UserID(c), req.MedicineID, req.Quantity)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Item added to cart",
		"cart":    cart,
	})
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateCartRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	cart, err := h.service.UpdateItem(c.UserContext(), middleware.UserID(c), req.MedicineID, req.Quantity)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cart updated",
		"cart":    cart,
	})
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("medicineId"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Item removed from cart",
		"cart":    cart,
	})
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(c.UserContext(), middleware.UserID(c)); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cart cleared",
	})
}
