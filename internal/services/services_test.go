package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/auth"
	"github.com/yishak-cs/cafe-pos/internal/database"
	"github.com/yishak-cs/cafe-pos/internal/messaging"
	"github.com/yishak-cs/cafe-pos/internal/models"
)

type recordingPublisher struct {
	mu      sync.Mutex
	tickets []messaging.TicketEvent
	alerts  []models.StockAlert
}

func (p *recordingPublisher) PublishTicket(_ context.Context, event messaging.TicketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickets = append(p.tickets, event)
	return nil
}

func (p *recordingPublisher) PublishStockAlert(_ context.Context, alert models.StockAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, alert)
	return nil
}

type testEnv struct {
	store     *database.MemoryStore
	publisher *recordingPublisher
	now       time.Time
	tables    *TableService
	menu      *MenuService
	supplies  *SupplyService
	orders    *OrderService
	invoices  *InvoiceService
	users     *UserService
	reports   *ReportService
}

var (
	manager = models.Actor{ID: "manager-1", Username: "maria", Role: models.RoleManager}
	waiter  = models.Actor{ID: "waiter-1", Username: "wes", Role: models.RoleWaiter}
	cashier = models.Actor{ID: "cashier-1", Username: "cas", Role: models.RoleCashier}
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     database.NewMemoryStore(),
		publisher: &recordingPublisher{},
		now:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }
	logger := zap.NewNop()
	env.tables = NewTableService(env.store, logger, clock)
	env.menu = NewMenuService(env.store, logger, clock)
	env.supplies = NewSupplyService(env.store, logger, clock)
	env.orders = NewOrderService(env.store, env.publisher, logger, clock)
	env.invoices = NewInvoiceService(env.store, logger, clock)
	env.users = NewUserService(env.store, auth.NewTokenManager("test-secret", time.Hour), logger, clock)
	env.reports = NewReportService(env.store, clock)
	return env
}

func (e *testEnv) table(t *testing.T, number string) *models.Table {
	t.Helper()
	table, err := e.tables.Create(context.Background(), manager, TableInput{
		TableNumber: number,
		Seats:       4,
		Location:    "Ground Floor",
	})
	require.NoError(t, err)
	return table
}

func (e *testEnv) item(t *testing.T, name string, price float64, stock int) *models.MenuItem {
	t.Helper()
	item, err := e.menu.Create(context.Background(), MenuItemInput{
		Name:          name,
		Price:         price,
		Category:      "Hot Coffee",
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) countTables(t *testing.T) int {
	t.Helper()
	tables, err := e.tables.List(context.Background(), models.TableFilter{})
	require.NoError(t, err)
	return len(tables)
}
