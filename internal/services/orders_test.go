package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestPlaceOrderLatteScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "5")
	latte := env.item(t, "Latte", 4.00, 10)

	order, err := env.orders.Place(ctx, waiter, OrderInput{
		Table:         table.ID,
		Items:         []OrderLine{{MenuItem: latte.ID, Quantity: 2}},
		Taxes:         ptr(16.0),
		ServiceCharge: ptr(10.0),
		Discount:      ptr(0.0),
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.OrderTypeKitchen, order.OrderType)
	assert.Equal(t, "5", order.TableNumber)
	assert.Equal(t, waiter.ID, order.CreatedBy)
	assert.InDelta(t, 8.00, order.Subtotal, 1e-9)
	assert.InDelta(t, 0.80, order.ServiceChargeAmount, 1e-9)
	assert.InDelta(t, 1.28, order.TaxAmount, 1e-9)
	assert.InDelta(t, 10.08, order.TotalAmount, 1e-9)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Latte", order.Items[0].Name)
	assert.InDelta(t, 4.00, order.Items[0].Price, 1e-9)

	got, err := env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, got.Status)

	stocked, err := env.menu.Get(ctx, latte.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stocked.StockQuantity)

	for _, next := range []models.OrderStatus{models.OrderMaking, models.OrderServed} {
		_, err := env.orders.UpdateStatus(ctx, waiter, order.ID, next)
		require.NoError(t, err)
		got, err := env.tables.Get(ctx, table.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TableOccupied, got.Status, "after %s", next)
	}

	_, err = env.orders.UpdateStatus(ctx, cashier, order.ID, models.OrderCompleted)
	require.NoError(t, err)
	got, err = env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)

	require.Len(t, env.publisher.tickets, 1)
	assert.Equal(t, "placed", env.publisher.tickets[0].Event)
}

func TestPlaceOrderOverStockHasNoSideEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "5")
	latte := env.item(t, "Latte", 4, 10)
	scone := env.item(t, "Scone", 2, 1)

	_, err := env.orders.Place(ctx, waiter, OrderInput{
		Table: table.ID,
		Items: []OrderLine{
			{MenuItem: latte.ID, Quantity: 3},
			{MenuItem: scone.ID, Quantity: 2},
		},
	})
	require.ErrorIs(t, err, models.ErrInsufficientStock)

	got, err := env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)

	stocked, err := env.menu.Get(ctx, latte.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stocked.StockQuantity)

	orders, err := env.orders.List(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, env.publisher.tickets)
}

func TestPlaceOrderRepeatedItemCountsTogether(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "5")
	latte := env.item(t, "Latte", 4, 3)

	_, err := env.orders.Place(ctx, waiter, OrderInput{
		Table: table.ID,
		Items: []OrderLine{{MenuItem: latte.ID, Quantity: 2}, {MenuItem: latte.ID, Quantity: 2}},
	})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	stocked, err := env.menu.Get(ctx, latte.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stocked.StockQuantity)
}

func TestPlaceOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "5")
	latte := env.item(t, "Latte", 4, 10)
	hidden, err := env.menu.Create(ctx, MenuItemInput{Name: "Secret", Price: 1, Category: "Tea", StockQuantity: 5, IsAvailable: ptr(false)})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   OrderInput
		want error
	}{
		{"no table", OrderInput{Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}}, models.ErrInvalidInput},
		{"no items", OrderInput{Table: table.ID}, models.ErrInvalidInput},
		{"zero quantity", OrderInput{Table: table.ID, Items: []OrderLine{{MenuItem: latte.ID}}}, models.ErrInvalidInput},
		{"bad type", OrderInput{Table: table.ID, OrderType: "DOT", Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}}, models.ErrInvalidInput},
		{"bad rate", OrderInput{Table: table.ID, Taxes: ptr(120.0), Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}}, models.ErrInvalidInput},
		{"unknown table", OrderInput{Table: "missing", Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}}, models.ErrNotFound},
		{"unknown item", OrderInput{Table: table.ID, Items: []OrderLine{{MenuItem: "missing", Quantity: 1}}}, models.ErrNotFound},
		{"unavailable item", OrderInput{Table: table.ID, Items: []OrderLine{{MenuItem: hidden.ID, Quantity: 1}}}, models.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.Place(ctx, waiter, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)
}

func TestOrderTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "5")
	latte := env.item(t, "Latte", 4, 10)

	order, err := env.orders.Place(ctx, waiter, OrderInput{Table: table.ID, Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, waiter, order.ID, models.OrderServed)
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, waiter, order.ID, models.OrderPending)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = env.orders.UpdateStatus(ctx, waiter, order.ID, "paid")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.orders.UpdateStatus(ctx, waiter, order.ID, models.OrderCompleted)
	require.NoError(t, err)

	_, err = env.orders.Cancel(ctx, manager, order.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestCancelOrderRestocksAndReleasesTable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "5")
	latte := env.item(t, "Latte", 4, 10)

	order, err := env.orders.Place(ctx, waiter, OrderInput{
		Table:     table.ID,
		OrderType: models.OrderTypeBar,
		Items:     []OrderLine{{MenuItem: latte.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = env.orders.Cancel(ctx, waiter, order.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	cancelled, err := env.orders.Cancel(ctx, manager, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	stocked, err := env.menu.Get(ctx, latte.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stocked.StockQuantity)

	got, err := env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)

	require.Len(t, env.publisher.tickets, 2)
	assert.Equal(t, "cancelled", env.publisher.tickets[1].Event)
	assert.Equal(t, models.OrderTypeBar, env.publisher.tickets[1].OrderType)
}

func TestCompletionKeepsTableOccupiedWhileOtherOrdersOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "5")
	latte := env.item(t, "Latte", 4, 10)

	first, err := env.orders.Place(ctx, waiter, OrderInput{Table: table.ID, Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}})
	require.NoError(t, err)
	second, err := env.orders.Place(ctx, waiter, OrderInput{Table: table.ID, Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, waiter, first.ID, models.OrderCompleted)
	require.NoError(t, err)
	got, err := env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, got.Status)

	_, err = env.orders.UpdateStatus(ctx, waiter, second.ID, models.OrderCompleted)
	require.NoError(t, err)
	got, err = env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)
}
