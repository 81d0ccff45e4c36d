package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/database"
	"github.com/yishak-cs/cafe-pos/internal/messaging"
	"github.com/yishak-cs/cafe-pos/internal/models"
)

// Alert kinds reported by the inventory monitor
const (
	AlertLowStock = "low_stock"
	AlertExpiring = "expiring"
)

// InventoryMonitor periodically scans for low-stock and soon-to-expire
// articles. Findings are logged and published; nothing is modified.
type InventoryMonitor struct {
	store     database.Store
	publisher messaging.Publisher
	logger    *zap.Logger
	interval  time.Duration
	window    time.Duration
	now       Clock
}

// NewInventoryMonitor creates a monitor that scans every interval and
// flags articles expiring within expiryDays.
func NewInventoryMonitor(store database.Store, publisher messaging.Publisher, logger *zap.Logger, interval time.Duration, expiryDays int, now Clock) *InventoryMonitor {
	return &InventoryMonitor{
		store:     store,
		publisher: publisher,
		logger:    logger.Named("inventory-monitor"),
		interval:  interval,
		window:    time.Duration(expiryDays) * 24 * time.Hour,
		now:       now,
	}
}

// Run scans once immediately and then on every tick until ctx is done
func (m *InventoryMonitor) Run(ctx context.Context) {
	m.logger.Info("inventory monitor started", zap.Duration("interval", m.interval))
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if _, err := m.Check(ctx); err != nil && ctx.Err() == nil {
			m.logger.Error("inventory check failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			m.logger.Info("inventory monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// Check runs one scan and returns its findings
func (m *InventoryMonitor) Check(ctx context.Context) ([]models.StockAlert, error) {
	now := m.now()
	until := now.Add(m.window)

	var (
		low          []models.MenuItem
		expiringMenu []models.MenuItem
		expiringSupp []models.Supply
	)
	err := m.store.Read(ctx, func(tx database.Tx) error {
		var err error
		if low, err = tx.MenuItems().ListLowStock(ctx); err != nil {
			return err
		}
		if expiringMenu, err = tx.MenuItems().ListExpiring(ctx, now, until); err != nil {
			return err
		}
		expiringSupp, err = tx.Supplies().ListExpiring(ctx, now, until)
		return err
	})
	if err != nil {
		return nil, err
	}

	alerts := make([]models.StockAlert, 0, len(low)+len(expiringMenu)+len(expiringSupp))
	for _, item := range low {
		alerts = append(alerts, models.StockAlert{
			Kind:     AlertLowStock,
			Resource: "menu_item",
			ID:       item.ID,
			Name:     item.Name,
			Quantity: item.StockQuantity,
			Minimum:  item.MinimumStock,
		})
	}
	for _, item := range expiringMenu {
		alerts = append(alerts, models.StockAlert{
			Kind:     AlertExpiring,
			Resource: "menu_item",
			ID:       item.ID,
			Name:     item.Name,
			Quantity: item.StockQuantity,
			DaysLeft: daysUntil(now, *item.ExpiryDate),
		})
	}
	for _, supply := range expiringSupp {
		alerts = append(alerts, models.StockAlert{
			Kind:     AlertExpiring,
			Resource: "supply",
			ID:       supply.ID,
			Name:     supply.Name,
			Quantity: supply.Quantity,
			DaysLeft: daysUntil(now, *supply.ExpiryDate),
		})
	}

	for _, alert := range alerts {
		m.logger.Warn("stock alert",
			zap.String("kind", alert.Kind),
			zap.String("resource", alert.Resource),
			zap.String("id", alert.ID),
			zap.String("name", alert.Name),
			zap.Int("quantity", alert.Quantity),
			zap.Int("days_left", alert.DaysLeft),
		)
		if err := m.publisher.PublishStockAlert(ctx, alert); err != nil {
			m.logger.Warn("failed to publish stock alert", zap.String("id", alert.ID), zap.Error(err))
		}
	}
	m.logger.Debug("inventory check finished", zap.Int("alerts", len(alerts)))
	return alerts, nil
}

func daysUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}
