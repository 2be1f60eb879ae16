package services

import (
	"context"
	"fmt"

	"medstore/internal/models"
	"medstore/internal/pagination"
	"medstore/internal/repositories"
)

const recentOrdersOnDashboard = 5

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalUsers        int64          `json:"totalUsers"`
	TotalMedicines    int64          `json:"totalMedicines"`
	TotalOrders       int64          `json:"totalOrders"`
	LowStockMedicines int64          `json:"lowStockMedicines"`
	RecentOrders      []models.Order `json:"recentOrders"`
}

type DashboardService struct {
	users     repositories.UserRepository
	medicines repositories.MedicineRepository
	orders    repositories.OrderRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(users repositories.UserRepository, medicines repositories.MedicineRepository, orders repositories.OrderRepository) *DashboardService {
	return &DashboardService{
		users:     users,
		medicines: medicines,
		orders:    orders,
	}
}

// Stats gathers the counters shown on the admin dashboard.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("dashboard users: %w", err)
	}
	if stats.TotalMedicines, err = s.medicines.Count(ctx); err != nil {
		return nil, fmt.Errorf("dashboard medicines: %w", err)
	}
	if stats.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, fmt.Errorf("dashboard orders: %w", err)
	}
	if stats.LowStockMedicines, err = s.medicines.CountLowStock(ctx); err != nil {
		return nil, fmt.Errorf("dashboard low stock: %w", err)
	}

	recent, _, err := s.orders.List(ctx, repositories.OrderFilter{Page: pagination.Params{Page: 1, Limit: recentOrdersOnDashboard}})
	if err != nil {
		return nil, fmt.Errorf("dashboard recent orders: %w", err)
	}
	if recent == nil {
		recent = []models.Order{}
	}
	stats.RecentOrders = recent
	return &stats, nil
}
