package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

func TestCreateTable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	table := env.table(t, " 5 ")
	assert.Equal(t, "5", table.TableNumber)
	assert.Equal(t, models.TableAvailable, table.Status)
	assert.Nil(t, table.AssignedWaiter)

	own, err := env.tables.Create(ctx, waiter, TableInput{TableNumber: "6", Seats: 2, Location: "1st Floor Indoor"})
	require.NoError(t, err)
	require.NotNil(t, own.AssignedWaiter)
	assert.Equal(t, waiter.ID, *own.AssignedWaiter)

	tests := []struct {
		name string
		in   TableInput
	}{
		{"missing number", TableInput{Seats: 2, Location: "Ground Floor"}},
		{"no seats", TableInput{TableNumber: "7", Location: "Ground Floor"}},
		{"bad location", TableInput{TableNumber: "7", Seats: 2, Location: "Roof"}},
		{"bad status", TableInput{TableNumber: "7", Seats: 2, Location: "Ground Floor", Status: "closed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tables.Create(ctx, manager, tt.in)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestCreateDuplicateTableWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.table(t, "5")

	_, err := env.tables.Create(context.Background(), manager, TableInput{TableNumber: "5", Seats: 2, Location: "Ground Floor"})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 1, env.countTables(t))
}

func TestConcurrentDuplicateTables(t *testing.T) {
	env := newTestEnv(t)

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.tables.Create(context.Background(), manager, TableInput{TableNumber: "9", Seats: 2, Location: "Ground Floor"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, models.ErrConflict) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, 1, env.countTables(t))
}

func TestUpdateTable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.table(t, "1")
	second := env.table(t, "2")

	taken := "1"
	_, err := env.tables.Update(ctx, second.ID, TableUpdate{TableNumber: &taken})
	assert.ErrorIs(t, err, models.ErrConflict)

	seats := 8
	reserved := models.TableReserved
	updated, err := env.tables.Update(ctx, second.ID, TableUpdate{Seats: &seats, Status: &reserved})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Seats)
	assert.Equal(t, models.TableReserved, updated.Status)

	_, err = env.tables.Update(ctx, "missing", TableUpdate{Seats: &seats})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdatePosition(t *testing.T) {
	env := newTestEnv(t)
	table := env.table(t, "1")

	moved, err := env.tables.UpdatePosition(context.Background(), table.ID, models.Position{X: -40, Y: 1200})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: -40, Y: 1200}, moved.Position)

	got, err := env.tables.Get(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, moved.Position, got.Position)
}

func TestTableWithOpenOrderIsGuarded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "3")
	latte := env.item(t, "Latte", 4, 10)

	_, err := env.orders.Place(ctx, waiter, OrderInput{Table: table.ID, Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}})
	require.NoError(t, err)

	assert.ErrorIs(t, env.tables.Delete(ctx, table.ID), models.ErrConflict)

	available := models.TableAvailable
	_, err = env.tables.Update(ctx, table.ID, TableUpdate{Status: &available})
	assert.ErrorIs(t, err, models.ErrConflict)

	got, err := env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, got.Status)
}

func TestTableWithOpenOrderCannotBeReserved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "9")
	latte := env.item(t, "Latte", 4, 10)

	order, err := env.orders.Place(ctx, waiter, OrderInput{Table: table.ID, Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}})
	require.NoError(t, err)

	reserved := models.TableReserved
	_, err = env.tables.Update(ctx, table.ID, TableUpdate{Status: &reserved})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = env.orders.UpdateStatus(ctx, waiter, order.ID, models.OrderCompleted)
	require.NoError(t, err)

	got, err := env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)

	got, err = env.tables.Update(ctx, table.ID, TableUpdate{Status: &reserved})
	require.NoError(t, err)
	assert.Equal(t, models.TableReserved, got.Status)
}

func TestMergeTables(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.table(t, "1")
	second := env.table(t, "2")
	_, err := env.tables.UpdatePosition(ctx, first.ID, models.Position{X: 10, Y: 20})
	require.NoError(t, err)

	merged, err := env.tables.Merge(ctx, first.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "1-2", merged.TableNumber)
	assert.Equal(t, 8, merged.Seats)
	assert.Equal(t, "Ground Floor", merged.Location)
	assert.Equal(t, models.Position{X: 10, Y: 20}, merged.Position)
	assert.Equal(t, models.TableAvailable, merged.Status)

	tables, err := env.tables.List(ctx, models.TableFilter{})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, merged.ID, tables[0].ID)
}

func TestMergeIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.table(t, "1")
	second := env.table(t, "2")
	env.table(t, "1-2")

	_, err := env.tables.Merge(ctx, first.ID, second.ID)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 3, env.countTables(t))

	_, err = env.tables.Get(ctx, first.ID)
	assert.NoError(t, err)
	_, err = env.tables.Get(ctx, second.ID)
	assert.NoError(t, err)
}

func TestMergeRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.table(t, "1")
	second := env.table(t, "2")
	latte := env.item(t, "Latte", 4, 10)

	_, err := env.tables.Merge(ctx, first.ID, first.ID)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.tables.Merge(ctx, first.ID, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.orders.Place(ctx, waiter, OrderInput{Table: second.ID, Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = env.tables.Merge(ctx, first.ID, second.ID)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 2, env.countTables(t))
}
