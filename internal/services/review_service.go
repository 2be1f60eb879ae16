package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"medstore/internal/apperrors"
	"medstore/internal/metrics"
	"medstore/internal/models"
	"medstore/internal/repositories"
)

// ReviewSummary is the review listing of one medicine.
type ReviewSummary struct {
	Reviews       []models.Review `json:"reviews"`
	AverageRating float64         `json:"averageRating"`
	TotalReviews  int             `json:"totalReviews"`
}

// ReviewService gates reviews on delivered purchases.
type ReviewService struct {
	medicines repositories.MedicineRepository
	orders    repositories.OrderRepository
	users     repositories.UserRepository
	logger    *slog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	medicines repositories.MedicineRepository,
	orders repositories.OrderRepository,
	users repositories.UserRepository,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		medicines: medicines,
		orders:    orders,
		users:     users,
		logger:    logger,
	}
}

// AddReview records a 1-5 rating from a user who received the medicine in a delivered order.
func (s *ReviewService) AddReview(ctx context.Context, userID, medicineID string, rating int, comment string) (*ReviewSummary, error) {
	comment = strings.TrimSpace(comment)
	fields := map[string]string{}
	if rating < 1 || rating > 5 {
		fields["rating"] = "must be between 1 and 5"
	}
	if comment == "" {
		fields["comment"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("Invalid review", fields)
	}

	purchased, err := s.orders.HasDeliveredWithMedicine(ctx, userID, medicineID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchases: %w", err)
	}
	if !purchased {
		return nil, apperrors.NotPurchased()
	}

	review := models.Review{
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	user, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		review.UserName = user.Name
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	medicine, err := s.medicines.AddReview(ctx, medicineID, review)
	if err != nil {
		return nil, err
	}

	metrics.ReviewsAdded.Inc()
	s.logger.InfoContext(ctx, "review added",
		slog.String("medicine_id", medicineID),
		slog.String("user_id", userID),
		slog.Int("rating", rating),
	)
	return summarize(medicine), nil
}

// ListReviews returns the reviews of a medicine with its mean rating.
func (s *ReviewService) ListReviews(ctx context.Context, medicineID string) (*ReviewSummary, error) {
	medicine, err := s.medicines.GetByID(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	return summarize(medicine), nil
}

func summarize(m *models.Medicine) *ReviewSummary {
	reviews := m.Reviews
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &ReviewSummary{
		Reviews:       reviews,
		AverageRating: m.AverageRating,
		TotalReviews:  len(reviews),
	}
}
