package repositories

import (
	"context"

	"medstore/internal/models"
	"medstore/internal/pagination"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// List matches search against name and email, newest users first.
	List(ctx context.Context, search string, page pagination.Params) ([]models.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

// AdminRepository defines the interface for administrator accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByID(ctx context.Context, id string) (*models.Admin, error)
}
