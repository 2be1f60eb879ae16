package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"medstore/internal/apperrors"
	"medstore/internal/models"
	"medstore/internal/pagination"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	seq   map[string]int
	next  int
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
		seq:   make(map[string]int),
	}
}

// Create adds a new user; emails are unique.
func (r *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.AlreadyExists("user", "email", user.Email)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.next++
	r.seq[user.ID] = r.next
	r.users[user.ID] = *user
	return nil
}

func (r *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (r *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return &u, nil
}

func (r *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return apperrors.NotFound("user", user.ID)
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *MockUserRepository) List(ctx context.Context, search string, page pagination.Params) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(search))
	matched := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if term != "" &&
			!strings.Contains(strings.ToLower(u.Name), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool {
		return r.seq[matched[i].ID] > r.seq[matched[j].ID]
	})

	total := int64(len(matched))
	if page.Limit > 0 {
		start := page.Offset()
		if start > len(matched) {
			start = len(matched)
		}
		end := start + page.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *MockUserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

// MockAdminRepository is an in-memory implementation of AdminRepository.
type MockAdminRepository struct {
	admins map[string]models.Admin
	mu     sync.RWMutex
}

// NewMockAdminRepository creates a new in-memory admin repository.
func NewMockAdminRepository() *MockAdminRepository {
	return &MockAdminRepository{admins: make(map[string]models.Admin)}
}

func (r *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.admins {
		if a.Email == admin.Email {
			return apperrors.AlreadyExists("admin", "email", admin.Email)
		}
	}
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	r.admins[admin.ID] = *admin
	return nil
}

func (r *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, apperrors.NotFound("admin", email)
}

func (r *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.admins[id]
	if !ok {
		return nil, apperrors.NotFound("admin", id)
	}
	return &a, nil
}
