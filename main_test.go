package main

import (
	"testing"

	"medstore/internal/logger"
	"medstore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedMedicines(t *testing.T) {
	repo := repositories.NewMockMedicineRepository()
	ctx := t.Context()

	require.NoError(t, seedMedicines(ctx, repo, logger.Discard()))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(demoMedicines), count)

	lowStock, err := repo.CountLowStock(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, lowStock)

	// Seeding again must not duplicate the catalog.
	require.NoError(t, seedMedicines(ctx, repo, logger.Discard()))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(demoMedicines), count)
}

func TestDemoMedicinesHaveValidDates(t *testing.T) {
	for _, m := range demoMedicines {
		assert.True(t, m.ExpiryDate.After(m.ManufacturingDate), m.Name)
		assert.False(t, m.Price.IsNegative(), m.Name)
	}
}
