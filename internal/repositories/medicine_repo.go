package repositories

import (
	"context"

	"medstore/internal/models"
	"medstore/internal/pagination"
)

// Searchable medicine columns.
const (
	FieldName         = "name"
	FieldManufacturer = "manufacturer"
	FieldDescription  = "description"
)

// MedicineFilter narrows a catalog listing.
type MedicineFilter struct {
	Search       string
	SearchFields []string
	// InStockOnly keeps medicines with quantity > 0.
	InStockOnly bool
	// LowStockOnly keeps medicines with quantity < LowStockThreshold.
	LowStockOnly bool
	// SortByStock orders by quantity ascending before newest first.
	SortByStock bool
	Page        pagination.Params
}

// MedicineRepository defines the interface for catalog data access.
type MedicineRepository interface {
	List(ctx context.Context, filter MedicineFilter) ([]models.Medicine, int64, error)
	GetByID(ctx context.Context, id string) (*models.Medicine, error)
	Create(ctx context.Context, medicine *models.Medicine) error
	Update(ctx context.Context, medicine *models.Medicine) error
	Delete(ctx context.Context, id string) error
	// AdjustQuantity applies quantity += delta only if the result stays >= 0.
	AdjustQuantity(ctx context.Context, id string, delta int) error
	// AddReview appends review unless its author already reviewed the medicine.
	AddReview(ctx context.Context, id string, review models.Review) (*models.Medicine, error)
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
}
