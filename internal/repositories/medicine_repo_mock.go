package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"medstore/internal/apperrors"
	"medstore/internal/models"

	"github.com/google/uuid"
)

// MockMedicineRepository is an in-memory implementation of MedicineRepository.
type MockMedicineRepository struct {
	medicines map[string]models.Medicine
	seq       map[string]int
	next      int
	mu        sync.RWMutex
}

// NewMockMedicineRepository creates a new instance of MockMedicineRepository.
func NewMockMedicineRepository() *MockMedicineRepository {
	return &MockMedicineRepository{
		medicines: make(map[string]models.Medicine),
		seq:       make(map[string]int),
	}
}

func copyMedicine(m models.Medicine) models.Medicine {
	m.Reviews = append([]models.Review{}, m.Reviews...)
	return m
}

func matchesSearch(m models.Medicine, term string, fields []string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		var v string
		switch f {
		case FieldName:
			v = m.Name
		case FieldManufacturer:
			v = m.Manufacturer
		case FieldDescription:
			v = m.Description
		}
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// List returns medicines matching filter, ordered like the GORM implementation.
func (r *MockMedicineRepository) List(ctx context.Context, filter MedicineFilter) ([]models.Medicine, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Medicine, 0, len(r.medicines))
	for _, m := range r.medicines {
		if filter.InStockOnly && m.Quantity <= 0 {
			continue
		}
		if filter.LowStockOnly && m.Quantity >= models.LowStockThreshold {
			continue
		}
		if !matchesSearch(m, filter.Search, filter.SearchFields) {
			continue
		}
		matched = append(matched, copyMedicine(m))
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if filter.SortByStock && matched[i].Quantity != matched[j].Quantity {
			return matched[i].Quantity < matched[j].Quantity
		}
		return r.seq[matched[i].ID] > r.seq[matched[j].ID]
	})

	total := int64(len(matched))
	if filter.Page.Limit > 0 {
		start := filter.Page.Offset()
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Page.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

// GetByID returns a medicine by its ID.
func (r *MockMedicineRepository) GetByID(ctx context.Context, id string) (*models.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.medicines[id]
	if !ok {
		return nil, apperrors.NotFound("medicine", id)
	}
	m = copyMedicine(m)
	return &m, nil
}

// Create adds a new medicine.
func (r *MockMedicineRepository) Create(ctx context.Context, medicine *models.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if medicine.ID == "" {
		medicine.ID = uuid.New().String()
	}
	now := time.Now()
	medicine.CreatedAt = now
	medicine.UpdatedAt = now
	medicine.SetQuantity(medicine.Quantity)
	r.next++
	r.seq[medicine.ID] = r.next
	r.medicines[medicine.ID] = copyMedicine(*medicine)
	return nil
}

// Update modifies an existing medicine.
func (r *MockMedicineRepository) Update(ctx context.Context, medicine *models.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.medicines[medicine.ID]
	if !ok {
		return apperrors.NotFound("medicine", medicine.ID)
	}
	medicine.CreatedAt = existing.CreatedAt
	medicine.UpdatedAt = time.Now()
	medicine.SetQuantity(medicine.Quantity)
	r.medicines[medicine.ID] = copyMedicine(*medicine)
	return nil
}

// Delete removes a medicine by its ID.
func (r *MockMedicineRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.medicines[id]; !ok {
		return apperrors.NotFound("medicine", id)
	}
	delete(r.medicines, id)
	delete(r.seq, id)
	return nil
}

// AdjustQuantity applies delta under the write lock, refusing to go below zero.
func (r *MockMedicineRepository) AdjustQuantity(ctx context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.medicines[id]
	if !ok {
		return apperrors.NotFound("medicine", id)
	}
	if m.Quantity+delta < 0 {
		return apperrors.InsufficientStock(m.Name)
	}
	m.SetQuantity(m.Quantity + delta)
	m.UpdatedAt = time.Now()
	r.medicines[id] = m
	return nil
}

// AddReview appends review under the write lock.
func (r *MockMedicineRepository) AddReview(ctx context.Context, id string, review models.Review) (*models.Medicine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.medicines[id]
	if !ok {
		return nil, apperrors.NotFound("medicine", id)
	}
	m = copyMedicine(m)
	if m.HasReviewFrom(review.UserID) {
		return nil, apperrors.AlreadyReviewed()
	}
	m.AppendReview(review)
	r.medicines[id] = m
	out := copyMedicine(m)
	return &out, nil
}

// Count returns the number of stored medicines.
func (r *MockMedicineRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.medicines)), nil
}

// CountLowStock returns the number of low-stock medicines.
func (r *MockMedicineRepository) CountLowStock(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, m := range r.medicines {
		if m.IsLowStock {
			n++
		}
	}
	return n, nil
}
