package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/auth"
	"github.com/yishak-cs/cafe-pos/internal/database"
	"github.com/yishak-cs/cafe-pos/internal/messaging"
	"github.com/yishak-cs/cafe-pos/internal/models"
)

// OrderLine is one requested menu item
type OrderLine struct {
	MenuItem string
	Quantity int
}

// OrderInput is a cart submitted for a table. Nil rates take the defaults.
type OrderInput struct {
	Table         string
	Items         []OrderLine
	OrderType     models.OrderType
	Discount      *float64
	Taxes         *float64
	ServiceCharge *float64
}

// OrderService places orders and drives them through their lifecycle
type OrderService struct {
	store     database.Store
	publisher messaging.Publisher
	logger    *zap.Logger
	now       Clock
}

// NewOrderService creates a new order service
func NewOrderService(store database.Store, publisher messaging.Publisher, logger *zap.Logger, now Clock) *OrderService {
	return &OrderService{store: store, publisher: publisher, logger: logger.Named("orders"), now: now}
}

// List returns orders matching filter, newest first
func (s *OrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown order status %q", filter.Status)
	}
	var orders []models.Order
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		orders, err = tx.Orders().List(ctx, filter)
		return err
	})
	return orders, err
}

// Get returns the order with the given id
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	var order *models.Order
	err := s.store.Read(ctx, func(tx database.Tx) error {
		var err error
		order, err = tx.Orders().Get(ctx, id)
		return err
	})
	return order, err
}

// Place validates the cart, decrements stock, occupies the table and
// stores the order in one transaction. A ticket goes to the preparing
// station once the transaction has committed.
func (s *OrderService) Place(ctx context.Context, actor models.Actor, in OrderInput) (*models.Order, error) {
	if in.Table == "" {
		return nil, invalid("table is required")
	}
	if len(in.Items) == 0 {
		return nil, invalid("order must contain at least one item")
	}
	for i, line := range in.Items {
		if line.MenuItem == "" {
			return nil, invalid("items[%d].menuItem is required", i)
		}
		if line.Quantity < 1 {
			return nil, invalid("items[%d].quantity must be at least 1", i)
		}
	}
	if in.OrderType == "" {
		in.OrderType = models.OrderTypeKitchen
	}
	if !in.OrderType.Valid() {
		return nil, invalid("orderType must be KOT or BOT")
	}
	rates := DefaultRates()
	if in.ServiceCharge != nil {
		rates.ServiceCharge = *in.ServiceCharge
	}
	if in.Taxes != nil {
		rates.Tax = *in.Taxes
	}
	if in.Discount != nil {
		rates.Discount = *in.Discount
	}
	if err := rates.validate(); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.store.Write(ctx, func(tx database.Tx) error {
		now := s.now()
		table, err := tx.Tables().Get(ctx, in.Table)
		if err != nil {
			return err
		}

		lines := make([]models.LineItem, 0, len(in.Items))
		for _, line := range in.Items {
			item, err := tx.MenuItems().Get(ctx, line.MenuItem)
			if err != nil {
				return err
			}
			if !item.IsAvailable {
				return invalid("%s is not available", item.Name)
			}
			if _, err := tx.MenuItems().AdjustStock(ctx, item.ID, -line.Quantity, now); err != nil {
				if errors.Is(err, models.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s has %d left, %d requested",
						models.ErrInsufficientStock, item.Name, item.StockQuantity, line.Quantity)
				}
				return err
			}
			lines = append(lines, models.LineItem{
				MenuItem: item.ID,
				Name:     item.Name,
				Price:    item.Price,
				Quantity: line.Quantity,
			})
		}

		totals := ComputeTotals(lines, rates)
		order = &models.Order{
			ID:                  uuid.NewString(),
			Table:               table.ID,
			TableNumber:         table.TableNumber,
			Items:               lines,
			OrderType:           in.OrderType,
			Status:              models.OrderPending,
			Discount:            rates.Discount,
			Taxes:               rates.Tax,
			ServiceCharge:       rates.ServiceCharge,
			Subtotal:            totals.Subtotal,
			DiscountAmount:      totals.Discount,
			TaxAmount:           totals.Tax,
			ServiceChargeAmount: totals.ServiceCharge,
			TotalAmount:         totals.Total,
			CreatedBy:           actor.ID,
			CreatedByName:       actor.Username,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		if table.Status != models.TableOccupied {
			table.Status = models.TableOccupied
			table.UpdatedAt = now
			if err := tx.Tables().Update(ctx, table); err != nil {
				return err
			}
		}
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("table_number", order.TableNumber),
		zap.Float64("total", order.TotalAmount),
		zap.String("created_by", actor.ID),
	)
	s.publishTicket(ctx, "placed", order)
	return order, nil
}

// UpdateStatus moves an order along its lifecycle. Cancelling restores
// stock and needs the orders:cancel permission. Completing or cancelling
// the last open order of a table frees the table.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.Actor, id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, invalid("unknown order status %q", next)
	}
	if next == models.OrderCancelled && !auth.Allowed(actor.Role, auth.OrdersCancel) {
		return nil, fmt.Errorf("%w: role %s cannot cancel orders", models.ErrForbidden, actor.Role)
	}

	var order *models.Order
	err := s.store.Write(ctx, func(tx database.Tx) error {
		current, err := tx.Orders().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := transitionOrder(ctx, tx, current, next, s.now()); err != nil {
			return err
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)),
		zap.String("actor", actor.ID),
	)
	if next == models.OrderCancelled {
		s.publishTicket(ctx, "cancelled", order)
	}
	return order, nil
}

// Cancel is UpdateStatus to cancelled
func (s *OrderService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.Order, error) {
	return s.UpdateStatus(ctx, actor, id, models.OrderCancelled)
}

// transitionOrder applies next to order inside tx, with the stock and
// table side effects of that move.
func transitionOrder(ctx context.Context, tx database.Tx, order *models.Order, next models.OrderStatus, now time.Time) error {
	if !order.Status.CanTransition(next) {
		return fmt.Errorf("%w: cannot move order from %s to %s", models.ErrInvalidTransition, order.Status, next)
	}

	if next == models.OrderCancelled {
		for _, line := range order.Items {
			_, err := tx.MenuItems().AdjustStock(ctx, line.MenuItem, line.Quantity, now)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				return err
			}
		}
	}

	order.Status = next
	order.UpdatedAt = now
	if err := tx.Orders().Update(ctx, order); err != nil {
		return err
	}
	if next.Terminal() {
		return releaseTable(ctx, tx, order.Table, now)
	}
	return nil
}

func (s *OrderService) publishTicket(ctx context.Context, event string, order *models.Order) {
	ticket := messaging.TicketEvent{
		Event:       event,
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		OrderType:   order.OrderType,
		Status:      order.Status,
		Items:       order.Items,
		CreatedBy:   order.CreatedByName,
		At:          order.UpdatedAt,
	}
	if err := s.publisher.PublishTicket(ctx, ticket); err != nil {
		s.logger.Warn("failed to publish ticket",
			zap.String("order_id", order.ID),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}
