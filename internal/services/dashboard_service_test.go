package services_test

import (
	"context"
	"errors"
	"testing"

	"medstore/internal/models"
	"medstore/internal/repositories"
	"medstore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Stats(t *testing.T) {
	users := repositories.NewMockUserRepository()
	medicines := repositories.NewMockMedicineRepository()
	orders := repositories.NewMockOrderRepository()
	service := services.NewDashboardService(users, medicines, orders)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{Name: "a", Email: "a@example.com"}))
	addMedicine(t, medicines, "Low", 4, "1.00")
	addMedicine(t, medicines, "High", 40, "1.00")
	for i := 0; i < 7; i++ {
		require.NoError(t, orders.Create(ctx, &models.Order{OrderID: "ORD" + string(rune('a'+i)), UserID: "u", Status: models.OrderStatusPending}))
	}

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.TotalMedicines)
	assert.EqualValues(t, 7, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.LowStockMedicines)
	require.Len(t, stats.RecentOrders, 5)
	assert.Equal(t, "ORDg", stats.RecentOrders[0].OrderID)
}

func TestDashboardService_StatsError(t *testing.T) {
	orders := new(MockOrderRepository)
	service := services.NewDashboardService(repositories.NewMockUserRepository(), repositories.NewMockMedicineRepository(), orders)
	orders.On("Count", mock.Anything).Return(int64(0), errors.New("boom")).Once()

	_, err := service.Stats(context.Background())
	assert.ErrorContains(t, err, "boom")
}
