package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/database"
	"github.com/yishak-cs/cafe-pos/internal/models"
)

// InvoiceInput is a checkout request. When OrderID is set the lines and
// rates come from the order and Items and the rates here are ignored.
type InvoiceInput struct {
	InvoiceNumber     string
	CustomerDetails   models.CustomerDetails
	OrderID           string
	Items             []OrderLine
	TaxRate           *float64
	ServiceChargeRate *float64
	DiscountRate      *float64
	Status            models.InvoiceStatus
	Date              *time.Time
}

// InvoiceService issues invoices. It never changes stock.
type InvoiceService struct {
	store  database.Store
	logger *zap.Logger
	now    Clock
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(store database.Store, logger *zap.Logger, now Clock) *InvoiceService {
	return &InvoiceService{store: store, logger: logger.Named("invoices"), now: now}
}

// List returns invoices matching filter, newest first
func (s *InvoiceService) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown invoice status %q", filter.Status)
	}
	var invoices []models.Invoice
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		invoices, err = tx.Invoices().List(ctx, filter)
		return err
	})
	return invoices, err
}

// Get returns the invoice with the given id
func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		invoice, err = tx.Invoices().Get(ctx, id)
		return err
	})
	return invoice, err
}

// Create issues an invoice with every amount computed here. Invoicing an
// order completes it in the same transaction.
func (s *InvoiceService) Create(ctx context.Context, actor models.Actor, in InvoiceInput) (*models.Invoice, error) {
	customer := in.CustomerDetails
	customer.Name = clean(customer.Name)
	if customer.Name == "" {
		return nil, invalid("customerDetails.name is required")
	}
	status := in.Status
	if status == "" {
		status = models.InvoicePaid
	}
	if !status.Valid() {
		return nil, invalid("unknown invoice status %q", status)
	}
	orderID := clean(in.OrderID)
	if orderID == "" && len(in.Items) == 0 {
		return nil, invalid("either orderId or items is required")
	}

	var invoice *models.Invoice
	err := s.store.Write(ctx, func(tx database.Tx) error {
		now := s.now()
		invoice = &models.Invoice{
			ID:              uuid.NewString(),
			InvoiceNumber:   clean(in.InvoiceNumber),
			CustomerDetails: customer,
			Date:            now,
			Status:          status,
			CreatedBy:       actor.ID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if in.Date != nil {
			invoice.Date = *in.Date
		}
		if invoice.InvoiceNumber == "" {
			invoice.InvoiceNumber = newInvoiceNumber(now)
		}

		var (
			lines []models.LineItem
			rates Rates
			err   error
		)
		if orderID != "" {
			lines, rates, err = s.fromOrder(ctx, tx, orderID, now)
			invoice.OrderID = &orderID
		} else {
			lines, rates, err = s.fromMenu(ctx, tx, in)
		}
		if err != nil {
			return err
		}

		totals := ComputeTotals(lines, rates)
		invoice.Items = lines
		invoice.TaxRate = rates.Tax
		invoice.ServiceChargeRate = rates.ServiceCharge
		invoice.DiscountRate = rates.Discount
		invoice.Subtotal = totals.Subtotal
		invoice.Tax = totals.Tax
		invoice.ServiceCharge = totals.ServiceCharge
		invoice.Discount = totals.Discount
		invoice.Total = totals.Total

		if err := tx.Invoices().Create(ctx, invoice); err != nil {
			if errors.Is(err, models.ErrConflict) {
				return conflict("invoice number %s already exists", invoice.InvoiceNumber)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Float64("total", invoice.Total),
	)
	return invoice, nil
}

func (s *InvoiceService) fromOrder(ctx context.Context, tx database.Tx, orderID string, now time.Time) ([]models.LineItem, Rates, error) {
	order, err := tx.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, Rates{}, err
	}
	if order.Status == models.OrderCancelled {
		return nil, Rates{}, conflict("order %s is cancelled", order.ID)
	}
	existing, err := tx.Invoices().GetByOrder(ctx, order.ID)
	switch {
	case err == nil:
		return nil, Rates{}, conflict("order %s is already invoiced as %s", order.ID, existing.InvoiceNumber)
	case !errors.Is(err, models.ErrNotFound):
		return nil, Rates{}, err
	}

	if order.Status != models.OrderCompleted {
		if err := transitionOrder(ctx, tx, order, models.OrderCompleted, now); err != nil {
			return nil, Rates{}, err
		}
	}
	rates := Rates{ServiceCharge: order.ServiceCharge, Tax: order.Taxes, Discount: order.Discount}
	return order.Items, rates, nil
}

func (s *InvoiceService) fromMenu(ctx context.Context, tx database.Tx, in InvoiceInput) ([]models.LineItem, Rates, error) {
	rates := DefaultRates()
	if in.TaxRate != nil {
		rates.Tax = *in.TaxRate
	}
	if in.ServiceChargeRate != nil {
		rates.ServiceCharge = *in.ServiceChargeRate
	}
	if in.DiscountRate != nil {
		rates.Discount = *in.DiscountRate
	}
	if err := rates.validate(); err != nil {
		return nil, Rates{}, err
	}

	lines := make([]models.LineItem, 0, len(in.Items))
	for i, line := range in.Items {
		if line.Quantity < 1 {
			return nil, Rates{}, invalid("items[%d].quantity must be at least 1", i)
		}
		item, err := tx.MenuItems().Get(ctx, line.MenuItem)
		if err != nil {
			return nil, Rates{}, err
		}
		lines = append(lines, models.LineItem{
			MenuItem: item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: line.Quantity,
		})
	}
	return lines, rates, nil
}

// UpdateStatus is the only change allowed on an issued invoice
func (s *InvoiceService) UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, invalid("unknown invoice status %q", status)
	}
	var invoice *models.Invoice
	err := s.store.Write(ctx, func(tx database.Tx) error {
		current, err := tx.Invoices().Get(ctx, id)
		if err != nil {
			return err
		}
		current.Status = status
		current.UpdatedAt = s.now()
		if err := tx.Invoices().Update(ctx, current); err != nil {
			return err
		}
		invoice = current
		return nil
	})
	return invoice, err
}

// Delete removes an invoice
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	return s.store.Write(ctx, func(tx database.Tx) error {
		return tx.Invoices().Delete(ctx, id)
	})
}

func newInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}
