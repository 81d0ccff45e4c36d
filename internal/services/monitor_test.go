package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

func TestInventoryMonitorCheck(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	low := env.item(t, "Latte", 4, 2)
	soon := env.now.Add(3 * 24 * time.Hour)
	later := env.now.Add(30 * 24 * time.Hour)
	_, err := env.menu.Create(ctx, MenuItemInput{Name: "Cream Cake", Price: 6, Category: "Desserts", StockQuantity: 40, ExpiryDate: &soon})
	require.NoError(t, err)
	_, err = env.supplies.Create(ctx, SupplyInput{Name: "Milk", Brand: "Dairy Fresh", Quantity: 5, ExpiryDate: &soon})
	require.NoError(t, err)
	_, err = env.supplies.Create(ctx, SupplyInput{Name: "Beans", Brand: "Acme", Quantity: 5, ExpiryDate: &later})
	require.NoError(t, err)

	monitor := NewInventoryMonitor(env.store, env.publisher, zap.NewNop(), time.Hour, 7, func() time.Time { return env.now })
	alerts, err := monitor.Check(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	byName := make(map[string]models.StockAlert)
	for _, a := range alerts {
		byName[a.Name] = a
	}
	assert.Equal(t, AlertLowStock, byName["Latte"].Kind)
	assert.Equal(t, low.ID, byName["Latte"].ID)
	assert.Equal(t, AlertExpiring, byName["Cream Cake"].Kind)
	assert.Equal(t, 3, byName["Cream Cake"].DaysLeft)
	assert.Equal(t, "supply", byName["Milk"].Resource)
	assert.Len(t, env.publisher.alerts, 3)
}

func TestInventoryMonitorStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	monitor := NewInventoryMonitor(env.store, env.publisher, zap.NewNop(), time.Millisecond, 7, time.Now)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
