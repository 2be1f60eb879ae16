package handlers

import (
	"log/slog"

	"medstore/internal/middleware"
	"medstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddReviewRequest represents the request body for reviewing a medicine.
type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// ReviewHandler handles HTTP requests for medicine reviews.
type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers review routes. Reading is public, writing needs a customer token.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, userOnly fiber.Handler) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Get("/medicine/:id", h.HandleListReviews)
	reviewRoutes.Post("/medicine/:id", userOnly, h.HandleAddReview)
}

func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	summary, err := h.service.ListReviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"reviews":       summary.Reviews,
		"averageRating": summary.AverageRating,
		"totalReviews":  summary.TotalReviews,
	})
}

// HandleAddReview records a review from a customer who received the medicine.
func (h *ReviewHandler) HandleAddReview(c *fiber.Ctx) error {
	var req AddReviewRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	summary, err := h.service.AddReview(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"message":       "Review added successfully",
		"reviews":       summary.Reviews,
		"averageRating": summary.AverageRating,
		"totalReviews":  summary.TotalReviews,
	})
}
