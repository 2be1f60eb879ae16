package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medstore/internal/apperrors"
	"medstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var searchableColumns = map[string]bool{
	FieldName:         true,
	FieldManufacturer: true,
	FieldDescription:  true,
}

// GORMMedicineRepository is a GORM implementation of MedicineRepository.
type GORMMedicineRepository struct {
	db *gorm.DB
}

// NewGORMMedicineRepository creates a new instance of GORMMedicineRepository.
func NewGORMMedicineRepository(db *gorm.DB) *GORMMedicineRepository {
	return &GORMMedicineRepository{
		db: db,
	}
}

func (r *GORMMedicineRepository) filtered(ctx context.Context, filter MedicineFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Medicine{})
	if filter.InStockOnly {
		q = q.Where("quantity > ?", 0)
	}
	if filter.LowStockOnly {
		q = q.Where("quantity < ?", models.LowStockThreshold)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		var conds []string
		var args []interface{}
		for _, f := range filter.SearchFields {
			if !searchableColumns[f] {
				continue
			}
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", f))
			args = append(args, pattern)
		}
		if len(conds) > 0 {
			q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
	}
	return q
}

// List returns one page of medicines matching filter plus the total match count.
func (r *GORMMedicineRepository) List(ctx context.Context, filter MedicineFilter) ([]models.Medicine, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count medicines: %w", err)
	}

	q := r.filtered(ctx, filter)
	if filter.SortByStock {
		q = q.Order("quantity ASC")
	}
	q = q.Order("created_at DESC")
	if filter.Page.Limit > 0 {
		q = q.Offset(filter.Page.Offset()).Limit(filter.Page.Limit)
	}

	var medicines []models.Medicine
	if err := q.Find(&medicines).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list medicines: %w", err)
	}
	return medicines, total, nil
}

// GetByID retrieves a single medicine by its ID.
func (r *GORMMedicineRepository) GetByID(ctx context.Context, id string) (*models.Medicine, error) {
	return r.getByID(r.db.WithContext(ctx), id)
}

func (r *GORMMedicineRepository) getByID(db *gorm.DB, id string) (*models.Medicine, error) {
	var medicine models.Medicine
	if err := db.First(&medicine, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("medicine", id)
		}
		return nil, fmt.Errorf("failed to get medicine by ID %s: %w", id, err)
	}
	return &medicine, nil
}

// Create inserts a new medicine.
func (r *GORMMedicineRepository) Create(ctx context.Context, medicine *models.Medicine) error {
	if medicine.ID == "" {
		medicine.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(medicine).Error; err != nil {
		return fmt.Errorf("failed to create medicine: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing medicine.
func (r *GORMMedicineRepository) Update(ctx context.Context, medicine *models.Medicine) error {
	res := r.db.WithContext(ctx).Model(medicine).Select("*").Omit("created_at").Updates(medicine)
	if res.Error != nil {
		return fmt.Errorf("failed to update medicine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("medicine", medicine.ID)
	}
	return nil
}

// Delete removes a medicine by its ID.
func (r *GORMMedicineRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Medicine{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete medicine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("medicine", id)
	}
	return nil
}

// AdjustQuantity runs a single conditional UPDATE so concurrent callers can never
// drive the stock below zero.
func (r *GORMMedicineRepository) AdjustQuantity(ctx context.Context, id string, delta int) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Medicine{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		UpdateColumns(map[string]interface{}{
			"quantity":     gorm.Expr("quantity + ?", delta),
			"is_low_stock": gorm.Expr("quantity + ? <= ?", delta, models.LowStockThreshold),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to adjust quantity of medicine %s: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	medicine, err := r.getByID(db, id)
	if err != nil {
		return err
	}
	return apperrors.InsufficientStock(medicine.Name)
}

// AddReview appends a review inside a transaction, locking the row on databases that support it.
func (r *GORMMedicineRepository) AddReview(ctx context.Context, id string, review models.Review) (*models.Medicine, error) {
	var updated *models.Medicine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		medicine, err := r.getByID(q, id)
		if err != nil {
			return err
		}
		if medicine.HasReviewFrom(review.UserID) {
			return apperrors.AlreadyReviewed()
		}
		medicine.AppendReview(review)
		if err := tx.Model(medicine).Select("reviews", "average_rating").Updates(medicine).Error; err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}
		updated = medicine
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Count returns the number of medicines in the catalog.
func (r *GORMMedicineRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Medicine{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count medicines: %w", err)
	}
	return n, nil
}

// CountLowStock returns the number of medicines flagged as low stock.
func (r *GORMMedicineRepository) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Medicine{}).Where("is_low_stock = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count low stock medicines: %w", err)
	}
	return n, nil
}
