package services

import (
	"context"
	"log/slog"
	"time"

	"medstore/internal/apperrors"
	"medstore/internal/models"
	"medstore/internal/pagination"
	"medstore/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	publicCatalogPageSize = 12
	adminPageSize         = 10
)

// MedicineInput carries the editable fields of a catalog entry.
type MedicineInput struct {
	Name              string
	Image             string
	Description       string
	Manufacturer      string
	ManufacturingDate time.Time
	ExpiryDate        time.Time
	Quantity          int
	Price             decimal.Decimal
}

func (in MedicineInput) validate() error {
	fields := map[string]string{}
	if in.Quantity < 0 {
		fields["quantity"] = "must not be negative"
	}
	if in.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if !in.ManufacturingDate.IsZero() && !in.ExpiryDate.IsZero() && !in.ExpiryDate.After(in.ManufacturingDate) {
		fields["expiryDate"] = "must be after manufacturingDate"
	}
	if len(fields) > 0 {
		return apperrors.Validation("Invalid medicine", fields)
	}
	return nil
}

func (in MedicineInput) applyTo(m *models.Medicine) {
	m.Name = in.Name
	m.Image = in.Image
	m.Description = in.Description
	m.Manufacturer = in.Manufacturer
	m.ManufacturingDate = in.ManufacturingDate
	m.ExpiryDate = in.ExpiryDate
	m.Price = in.Price
	m.SetQuantity(in.Quantity)
}

// MedicineService handles business logic related to the catalog.
type MedicineService struct {
	repo   repositories.MedicineRepository
	logger *slog.Logger
}

// NewMedicineService creates a new MedicineService.
func NewMedicineService(repo repositories.MedicineRepository, logger *slog.Logger) *MedicineService {
	return &MedicineService{
		repo:   repo,
		logger: logger,
	}
}

// ListAvailable returns in-stock medicines for the public storefront, newest first.
func (s *MedicineService) ListAvailable(ctx context.Context, search string, page, limit int) ([]models.Medicine, pagination.Meta, error) {
	params := pagination.New(page, limit, publicCatalogPageSize)
	medicines, total, err := s.repo.List(ctx, repositories.MedicineFilter{
		Search:       search,
		SearchFields: []string{repositories.FieldName, repositories.FieldManufacturer, repositories.FieldDescription},
		InStockOnly:  true,
		Page:         params,
	})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return medicines, params.Meta(total), nil
}

// ListForAdmin returns the whole catalog ordered by stock level, optionally only low-stock entries.
func (s *MedicineService) ListForAdmin(ctx context.Context, search string, lowStockOnly bool, page, limit int) ([]models.Medicine, pagination.Meta, error) {
	params := pagination.New(page, limit, adminPageSize)
	medicines, total, err := s.repo.List(ctx, repositories.MedicineFilter{
		Search:       search,
		SearchFields: []string{repositories.FieldName, repositories.FieldManufacturer},
		LowStockOnly: lowStockOnly,
		SortByStock:  true,
		Page:         params,
	})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return medicines, params.Meta(total), nil
}

// GetMedicine retrieves a single medicine by its ID.
func (s *MedicineService) GetMedicine(ctx context.Context, id string) (*models.Medicine, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateMedicine adds a catalog entry.
func (s *MedicineService) CreateMedicine(ctx context.Context, in MedicineInput) (*models.Medicine, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	medicine := &models.Medicine{Reviews: []models.Review{}}
	in.applyTo(medicine)
	if err := s.repo.Create(ctx, medicine); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "medicine created", slog.String("medicine_id", medicine.ID), slog.String("name", medicine.Name))
	return medicine, nil
}

// UpdateMedicine replaces the editable fields of a medicine; reviews are kept.
func (s *MedicineService) UpdateMedicine(ctx context.Context, id string, in MedicineInput) (*models.Medicine, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	medicine, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(medicine)
	if err := s.repo.Update(ctx, medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// DeleteMedicine deletes a medicine by its ID.
func (s *MedicineService) DeleteMedicine(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "medicine deleted", slog.String("medicine_id", id))
	return nil
}
