package handlers

import (
	"log/slog"

	"medstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the admin view of customer accounts.
type UserHandler struct {
	service *services.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	userRoutes := router.Group("/admin/users", adminOnly)
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Patch("/:id/toggle-status", h.HandleToggleStatus)
}

func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, meta, err := h.service.ListUsers(c.UserContext(), c.Query("search"), c.QueryInt("page", 1), c.QueryInt("limit"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"users":      users,
		"pagination": meta,
	})
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

// HandleToggleStatus flips a customer between active and disabled.
func (h *UserHandler) HandleToggleStatus(c *fiber.Ctx) error {
	user, err := h.service.ToggleStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	msg := "User deactivated"
	if user.IsActive {
		msg = "User activated"
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": msg,
		"user":    user,
	})
}
