package services

import (
	"context"
	"log/slog"
	"strings"

	"medstore/internal/models"
	"medstore/internal/pagination"
	"medstore/internal/repositories"
)

// ProfileInput is the part of a user's account they may edit themselves.
type ProfileInput struct {
	Name    string
	Phone   string
	Address *models.Address
}

// UserService covers customer profiles and their administration.
type UserService struct {
	users  repositories.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile overwrites only the non-empty fields of in.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		user.Phone = phone
	}
	if in.Address != nil {
		user.Address = *in.Address
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers searches customers by name or email.
func (s *UserService) ListUsers(ctx context.Context, search string, page, limit int) ([]models.User, pagination.Meta, error) {
	params := pagination.New(page, limit, adminPageSize)
	users, total, err := s.users.List(ctx, search, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return users, params.Meta(total), nil
}

// ToggleStatus flips whether the user may sign in.
func (s *UserService) ToggleStatus(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user status changed", slog.String("user_id", id), slog.Bool("active", user.IsActive))
	return user, nil
}
