package handlers

import (
	"log/slog"

	"medstore/internal/middleware"
	"medstore/internal/models"
	"medstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressRequest is a postal address in a request body.
type AddressRequest struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

func (a AddressRequest) toModel() models.Address {
	return models.Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode}
}

// RegisterRequest represents the request body for customer sign up.
type RegisterRequest struct {
	Name     string          `json:"name" validate:"required"`
	Email    string          `json:"email" validate:"required,email"`
	Phone    string          `json:"phone" validate:"required"`
	Password string          `json:"password" validate:"required,min=6"`
	Address  *AddressRequest `json:"address" validate:"omitempty"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest holds the editable profile fields; empty fields are left unchanged.
type UpdateProfileRequest struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Address *AddressRequest `json:"address" validate:"omitempty"`
}

// AuthHandler handles HTTP requests for authentication and profiles.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		validate:    newValidator(),
		logger:      logger,
	}
}

// RegisterRoutes registers the customer and admin authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, userOnly, adminOnly fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/profile", userOnly, h.HandleGetProfile)
	authRoutes.Put("/profile", userOnly, h.HandleUpdateProfile)

	adminRoutes := router.Group("/admin/auth")
	adminRoutes.Post("/login", h.HandleAdminLogin)
	adminRoutes.Get("/profile", adminOnly, h.HandleAdminProfile)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	in := services.RegisterInput{Name: req.Name, Email: req.Email, Phone: req.Phone, Password: req.Password}
	if req.Address != nil {
		in.Address = req.Address.toModel()
	}
	user, token, err := h.authService.RegisterUser(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	user, token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	in := services.ProfileInput{Name: req.Name, Phone: req.Phone}
	if req.Address != nil {
		addr := req.Address.toModel()
		in.Address = &addr
	}
	user, err := h.userService.UpdateProfile(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// HandleAdminLogin authenticates an administrator.
func (h *AuthHandler) HandleAdminLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	admin, token, err := h.authService.LoginAdmin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"admin":   admin,
	})
}

func (h *AuthHandler) HandleAdminProfile(c *fiber.Ctx) error {
	admin, err := h.authService.GetAdmin(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "admin": admin})
}
