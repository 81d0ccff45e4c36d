package services

import (
	"context"
	"sort"
	"time"

	"github.com/yishak-cs/cafe-pos/internal/database"
	"github.com/yishak-cs/cafe-pos/internal/models"
)

const (
	defaultReportDays  = 30
	defaultReportLimit = 10
	maxReportDays      = 365
)

// ReportService aggregates sales from stored orders
type ReportService struct {
	store database.Store
	now   Clock
}

// NewReportService creates a new report service
func NewReportService(store database.Store, now Clock) *ReportService {
	return &ReportService{store: store, now: now}
}

func (s *ReportService) orders(ctx context.Context, days int) ([]models.Order, error) {
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	var orders []models.Order
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		orders, err = tx.Orders().List(ctx, models.OrderFilter{Since: since})
		return err
	})
	return orders, err
}

// TopSellingItems ranks menu items by quantity sold over the last days.
// Cancelled orders do not count.
func (s *ReportService) TopSellingItems(ctx context.Context, days, limit int) ([]models.ItemSales, error) {
	days = clampDays(days)
	if limit <= 0 {
		limit = defaultReportLimit
	}
	orders, err := s.orders(ctx, days)
	if err != nil {
		return nil, err
	}

	byItem := make(map[string]*models.ItemSales)
	for _, order := range orders {
		if order.Status == models.OrderCancelled {
			continue
		}
		seen := make(map[string]bool)
		for _, line := range order.Items {
			sales, ok := byItem[line.MenuItem]
			if !ok {
				sales = &models.ItemSales{MenuItem: line.MenuItem, Name: line.Name}
				byItem[line.MenuItem] = sales
			}
			sales.Quantity += line.Quantity
			sales.Revenue += line.Price * float64(line.Quantity)
			if !seen[line.MenuItem] {
				seen[line.MenuItem] = true
				sales.Orders++
			}
		}
	}

	ranked := make([]models.ItemSales, 0, len(byItem))
	for _, sales := range byItem {
		sales.Revenue = round2(sales.Revenue)
		ranked = append(ranked, *sales)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Summary counts orders by status and totals the revenue of completed ones
func (s *ReportService) Summary(ctx context.Context, days int) (*models.SalesSummary, error) {
	days = clampDays(days)
	orders, err := s.orders(ctx, days)
	if err != nil {
		return nil, err
	}

	summary := &models.SalesSummary{Days: days, OrdersByState: make(map[models.OrderStatus]int)}
	completed := 0
	for _, order := range orders {
		summary.OrdersByState[order.Status]++
		if order.Status == models.OrderCompleted {
			summary.Revenue += order.TotalAmount
			completed++
		}
	}
	if completed > 0 {
		summary.AverageTicket = round2(summary.Revenue / float64(completed))
	}
	summary.Revenue = round2(summary.Revenue)
	return summary, nil
}

func clampDays(days int) int {
	if days <= 0 {
		return defaultReportDays
	}
	if days > maxReportDays {
		return maxReportDays
	}
	return days
}
