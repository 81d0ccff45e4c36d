package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

func TestInvoiceFromOrderCompletesIt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "5")
	latte := env.item(t, "Latte", 4, 10)

	order, err := env.orders.Place(ctx, waiter, OrderInput{
		Table:    table.ID,
		Items:    []OrderLine{{MenuItem: latte.ID, Quantity: 2}},
		Discount: ptr(10.0),
	})
	require.NoError(t, err)

	invoice, err := env.invoices.Create(ctx, cashier, InvoiceInput{
		CustomerDetails: models.CustomerDetails{Name: "Walk-in"},
		OrderID:         order.ID,
		Items:           []OrderLine{{MenuItem: latte.ID, Quantity: 50}},
		TaxRate:         ptr(0.0),
	})
	require.NoError(t, err)

	assert.Equal(t, order.ID, *invoice.OrderID)
	assert.Equal(t, models.InvoicePaid, invoice.Status)
	assert.Equal(t, cashier.ID, invoice.CreatedBy)
	assert.Contains(t, invoice.InvoiceNumber, "INV-20240301-")
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, 2, invoice.Items[0].Quantity)
	assert.InDelta(t, 16.0, invoice.TaxRate, 1e-9)
	assert.InDelta(t, order.TotalAmount, invoice.Total, 1e-9)
	assert.InDelta(t, 9.28, invoice.Total, 1e-9)

	completed, err := env.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, completed.Status)

	got, err := env.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)

	stocked, err := env.menu.Get(ctx, latte.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stocked.StockQuantity, "invoicing must not touch stock")

	_, err = env.invoices.Create(ctx, cashier, InvoiceInput{
		CustomerDetails: models.CustomerDetails{Name: "Again"},
		OrderID:         order.ID,
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestInvoiceFromCancelledOrderRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	table := env.table(t, "5")
	latte := env.item(t, "Latte", 4, 10)

	order, err := env.orders.Place(ctx, waiter, OrderInput{Table: table.ID, Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = env.orders.Cancel(ctx, manager, order.ID)
	require.NoError(t, err)

	_, err = env.invoices.Create(ctx, cashier, InvoiceInput{
		CustomerDetails: models.CustomerDetails{Name: "Walk-in"},
		OrderID:         order.ID,
	})
	assert.ErrorIs(t, err, models.ErrConflict)

	invoices, err := env.invoices.List(ctx, models.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestInvoiceFromItemsUsesMenuPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	latte := env.item(t, "Latte", 4, 10)
	mocha := env.item(t, "Mocha", 5, 10)

	invoice, err := env.invoices.Create(ctx, cashier, InvoiceInput{
		InvoiceNumber:   "INV-42",
		CustomerDetails: models.CustomerDetails{Name: "  Abebe  ", Email: "abebe@example.com"},
		Items: []OrderLine{
			{MenuItem: latte.ID, Quantity: 1},
			{MenuItem: mocha.ID, Quantity: 2},
		},
		ServiceChargeRate: ptr(0.0),
		TaxRate:           ptr(10.0),
		Status:            models.InvoicePending,
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-42", invoice.InvoiceNumber)
	assert.Equal(t, "Abebe", invoice.CustomerDetails.Name)
	assert.Equal(t, "Mocha", invoice.Items[1].Name)
	assert.InDelta(t, 14.0, invoice.Subtotal, 1e-9)
	assert.InDelta(t, 1.4, invoice.Tax, 1e-9)
	assert.InDelta(t, 15.4, invoice.Total, 1e-9)
	assert.Nil(t, invoice.OrderID)

	for _, id := range []string{latte.ID, mocha.ID} {
		item, err := env.menu.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 10, item.StockQuantity)
	}

	_, err = env.invoices.Create(ctx, cashier, InvoiceInput{
		InvoiceNumber:   "INV-42",
		CustomerDetails: models.CustomerDetails{Name: "Dup"},
		Items:           []OrderLine{{MenuItem: latte.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestInvoiceValidationAndStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	latte := env.item(t, "Latte", 4, 10)

	_, err := env.invoices.Create(ctx, cashier, InvoiceInput{Items: []OrderLine{{MenuItem: latte.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.invoices.Create(ctx, cashier, InvoiceInput{CustomerDetails: models.CustomerDetails{Name: "A"}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.invoices.Create(ctx, cashier, InvoiceInput{
		CustomerDetails: models.CustomerDetails{Name: "A"},
		Items:           []OrderLine{{MenuItem: "missing", Quantity: 1}},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	invoice, err := env.invoices.Create(ctx, cashier, InvoiceInput{
		CustomerDetails: models.CustomerDetails{Name: "A"},
		Items:           []OrderLine{{MenuItem: latte.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := env.invoices.UpdateStatus(ctx, invoice.ID, models.InvoiceCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCancelled, updated.Status)
	assert.InDelta(t, invoice.Total, updated.Total, 1e-9)

	_, err = env.invoices.UpdateStatus(ctx, invoice.ID, "refunded")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	cancelled, err := env.invoices.List(ctx, models.InvoiceFilter{Status: models.InvoiceCancelled})
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)

	require.NoError(t, env.invoices.Delete(ctx, invoice.ID))
	_, err = env.invoices.Get(ctx, invoice.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
