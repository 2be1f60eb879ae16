package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"medstore/internal/models"
	"medstore/internal/repositories"

	"github.com/shopspring/decimal"
)

func date(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// demoMedicines is the starter catalog loaded with SEED_DEMO_DATA=true.
var demoMedicines = []models.Medicine{
	{
		Name:              "Paracetamol 500mg",
		Image:             "uploads/medicines/paracetamol.jpg",
		Description:       "Pain reliever and fever reducer. Effective for headaches, muscle aches, and reducing fever.",
		Manufacturer:      "ABC Pharmaceuticals",
		ManufacturingDate: date(2024, time.January),
		ExpiryDate:        date(2026, time.January),
		Quantity:          150,
		Price:             decimal.RequireFromString("12.99"),
	},
	{
		Name:              "Aspirin 100mg",
		Image:             "uploads/medicines/aspirin.jpg",
		Description:       "Blood thinner and pain reliever. Helps prevent heart attacks and strokes.",
		Manufacturer:      "XYZ Pharma",
		ManufacturingDate: date(2024, time.February),
		ExpiryDate:        date(2026, time.February),
		Quantity:          8,
		Price:             decimal.RequireFromString("8.50"),
	},
	{
		Name:              "Amoxicillin 250mg",
		Image:             "uploads/medicines/amoxicillin.jpg",
		Description:       "Antibiotic used to treat bacterial infections.",
		Manufacturer:      "MedLife Labs",
		ManufacturingDate: date(2024, time.March),
		ExpiryDate:        date(2025, time.September),
		Quantity:          75,
		Price:             decimal.RequireFromString("25.00"),
	},
	{
		Name:              "Cetirizine 10mg",
		Image:             "uploads/medicines/cetirizine.jpg",
		Description:       "Antihistamine for allergy relief. Reduces sneezing, runny nose, and itchy eyes.",
		Manufacturer:      "HealthCare Inc",
		ManufacturingDate: date(2024, time.January),
		ExpiryDate:        date(2026, time.June),
		Quantity:          5,
		Price:             decimal.RequireFromString("15.75"),
	},
	{
		Name:              "Omeprazole 20mg",
		Image:             "uploads/medicines/omeprazole.jpg",
		Description:       "Reduces stomach acid. Treats heartburn and acid reflux.",
		Manufacturer:      "GastroMed",
		ManufacturingDate: date(2024, time.April),
		ExpiryDate:        date(2026, time.April),
		Quantity:          0,
		Price:             decimal.RequireFromString("18.25"),
	},
}

// seedMedicines loads the demo catalog into an empty store. A populated catalog is left untouched.
func seedMedicines(ctx context.Context, repo repositories.MedicineRepository, logger *slog.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("catalog already populated, skipping seed", "medicines", count)
		return nil
	}

	for i := range demoMedicines {
		m := demoMedicines[i]
		if err := repo.Create(ctx, &m); err != nil {
			return fmt.Errorf("failed to seed medicine %s: %w", m.Name, err)
		}
		logger.Info("seeded medicine", "name", m.Name, "id", m.ID)
	}
	return nil
}
