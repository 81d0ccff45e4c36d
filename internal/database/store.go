package database

import (
	"context"
	"time"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

// Store is the transactional entry point to persistence.
//
// Work passed to Write runs inside a single transaction: if it returns an
// error nothing it did is kept. Work may be invoked more than once when the
// backend retries a transient failure, so it must not cause side effects
// outside the transaction.
type Store interface {
	Read(ctx context.Context, work func(Tx) error) error
	Write(ctx context.Context, work func(Tx) error) error
	Health(ctx context.Context) error
	Close(ctx context.Context) error
}

// Tx exposes the repositories bound to one transaction
type Tx interface {
	Users() UserRepository
	Tables() TableRepository
	MenuItems() MenuItemRepository
	Supplies() SupplyRepository
	Orders() OrderRepository
	Invoices() InvoiceRepository
}

// Repositories return models.ErrNotFound for unknown ids and
// models.ErrConflict when a unique key is already taken.

// UserRepository persists staff accounts
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

// TableRepository persists tables
type TableRepository interface {
	Create(ctx context.Context, t *models.Table) error
	Get(ctx context.Context, id string) (*models.Table, error)
	List(ctx context.Context, filter models.TableFilter) ([]models.Table, error)
	Update(ctx context.Context, t *models.Table) error
	Delete(ctx context.Context, id string) error
}

// MenuItemRepository persists menu items and their stock
type MenuItemRepository interface {
	Create(ctx context.Context, m *models.MenuItem) error
	Get(ctx context.Context, id string) (*models.MenuItem, error)
	List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error)
	// Update writes everything but StockQuantity, which only AdjustStock changes.
	Update(ctx context.Context, m *models.MenuItem) error
	Delete(ctx context.Context, id string) error
	// AdjustStock adds delta to the stock counter and returns the updated
	// item, or models.ErrInsufficientStock if the result would be negative.
	AdjustStock(ctx context.Context, id string, delta int, now time.Time) (*models.MenuItem, error)
	ListLowStock(ctx context.Context) ([]models.MenuItem, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]models.MenuItem, error)
}

// SupplyRepository persists supplies
type SupplyRepository interface {
	Create(ctx context.Context, s *models.Supply) error
	Get(ctx context.Context, id string) (*models.Supply, error)
	List(ctx context.Context) ([]models.Supply, error)
	Update(ctx context.Context, s *models.Supply) error
	Delete(ctx context.Context, id string) error
	ListExpiring(ctx context.Context, from, to time.Time) ([]models.Supply, error)
}

// OrderRepository persists orders with their lines
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	// CountOpenByTable counts orders on the table that are not completed or cancelled.
	CountOpenByTable(ctx context.Context, tableID string) (int, error)
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Get(ctx context.Context, id string) (*models.Invoice, error)
	GetByOrder(ctx context.Context, orderID string) (*models.Invoice, error)
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, error)
	Update(ctx context.Context, inv *models.Invoice) error
	Delete(ctx context.Context, id string) error
}
