package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

var errReadOnly = errors.New("write attempted in a read transaction")

// MemoryStore keeps every collection in process memory. Writers are
// serialized and work on a copy of the state that replaces the original
// only when the work succeeds, which gives Write all-or-nothing semantics.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memState
}

type memState struct {
	users    map[string]models.User
	tables   map[string]models.Table
	menu     map[string]models.MenuItem
	supplies map[string]models.Supply
	orders   map[string]models.Order
	invoices map[string]models.Invoice
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		users:    map[string]models.User{},
		tables:   map[string]models.Table{},
		menu:     map[string]models.MenuItem{},
		supplies: map[string]models.Supply{},
		orders:   map[string]models.Order{},
		invoices: map[string]models.Invoice{},
	}}
}

// Read runs work against the current snapshot
func (s *MemoryStore) Read(ctx context.Context, work func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return work(&memTx{st: s.state, readOnly: true})
}

// Write runs work on a copy and keeps it only if work succeeds
func (s *MemoryStore) Write(ctx context.Context, work func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	if err := work(&memTx{st: next}); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Health always succeeds while ctx is live
func (s *MemoryStore) Health(ctx context.Context) error { return ctx.Err() }

// Close is a no-op
func (s *MemoryStore) Close(context.Context) error { return nil }

func (st *memState) clone() *memState {
	next := &memState{
		users:    make(map[string]models.User, len(st.users)),
		tables:   make(map[string]models.Table, len(st.tables)),
		menu:     make(map[string]models.MenuItem, len(st.menu)),
		supplies: make(map[string]models.Supply, len(st.supplies)),
		orders:   make(map[string]models.Order, len(st.orders)),
		invoices: make(map[string]models.Invoice, len(st.invoices)),
	}
	for k, v := range st.users {
		next.users[k] = v
	}
	for k, v := range st.tables {
		next.tables[k] = copyTable(v)
	}
	for k, v := range st.menu {
		next.menu[k] = copyMenuItem(v)
	}
	for k, v := range st.supplies {
		next.supplies[k] = copySupply(v)
	}
	for k, v := range st.orders {
		next.orders[k] = copyOrder(v)
	}
	for k, v := range st.invoices {
		next.invoices[k] = copyInvoice(v)
	}
	return next
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTable(t models.Table) models.Table {
	t.AssignedWaiter = copyString(t.AssignedWaiter)
	return t
}

func copyMenuItem(m models.MenuItem) models.MenuItem {
	m.ExpiryDate = copyTime(m.ExpiryDate)
	return m
}

func copySupply(s models.Supply) models.Supply {
	s.ExpiryDate = copyTime(s.ExpiryDate)
	return s
}

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.LineItem(nil), o.Items...)
	return o
}

func copyInvoice(inv models.Invoice) models.Invoice {
	inv.Items = append([]models.LineItem(nil), inv.Items...)
	inv.OrderID = copyString(inv.OrderID)
	return inv
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id)
}

type memTx struct {
	st       *memState
	readOnly bool
}

func (tx *memTx) Users() UserRepository { return memUsers{tx} }
func (tx *memTx) Tables() TableRepository { return memTables{tx} }
func (tx *memTx) MenuItems() MenuItemRepository { return memMenu{tx} }
func (tx *memTx) Supplies() SupplyRepository { return memSupplies{tx} }
func (tx *memTx) Orders() OrderRepository { return memOrders{tx} }
func (tx *memTx) Invoices() InvoiceRepository { return memInvoices{tx} }

func (tx *memTx) writable() error {
	if tx.readOnly {
		return errReadOnly
	}
	return nil
}

// Users

type memUsers struct{ tx *memTx }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.users[u.ID]; ok {
		return fmt.Errorf("%w: user id %s", models.ErrConflict, u.ID)
	}
	for _, existing := range r.tx.st.users {
		if existing.Username == u.Username {
			return fmt.Errorf("%w: username %q already exists", models.ErrConflict, u.Username)
		}
	}
	r.tx.st.users[u.ID] = *u
	return nil
}

func (r memUsers) Get(_ context.Context, id string) (*models.User, error) {
	u, ok := r.tx.st.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.tx.st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, notFound("user", username)
}

func (r memUsers) List(context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(r.tx.st.users))
	for _, u := range r.tx.st.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r memUsers) Update(_ context.Context, u *models.User) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.users[u.ID]; !ok {
		return notFound("user", u.ID)
	}
	for id, existing := range r.tx.st.users {
		if id != u.ID && existing.Username == u.Username {
			return fmt.Errorf("%w: username %q already exists", models.ErrConflict, u.Username)
		}
	}
	r.tx.st.users[u.ID] = *u
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.users[id]; !ok {
		return notFound("user", id)
	}
	delete(r.tx.st.users, id)
	return nil
}

func (r memUsers) CountByRole(_ context.Context, role models.Role) (int, error) {
	n := 0
	for _, u := range r.tx.st.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// Tables

type memTables struct{ tx *memTx }

func (r memTables) numberTaken(number, except string) bool {
	for id, t := range r.tx.st.tables {
		if id != except && t.TableNumber == number {
			return true
		}
	}
	return false
}

func (r memTables) Create(_ context.Context, t *models.Table) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.tables[t.ID]; ok {
		return fmt.Errorf("%w: table id %s", models.ErrConflict, t.ID)
	}
	if r.numberTaken(t.TableNumber, "") {
		return fmt.Errorf("%w: table number %q already exists", models.ErrConflict, t.TableNumber)
	}
	r.tx.st.tables[t.ID] = copyTable(*t)
	return nil
}

func (r memTables) Get(_ context.Context, id string) (*models.Table, error) {
	t, ok := r.tx.st.tables[id]
	if !ok {
		return nil, notFound("table", id)
	}
	t = copyTable(t)
	return &t, nil
}

func (r memTables) List(_ context.Context, filter models.TableFilter) ([]models.Table, error) {
	tables := make([]models.Table, 0, len(r.tx.st.tables))
	for _, t := range r.tx.st.tables {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		tables = append(tables, copyTable(t))
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Location != tables[j].Location {
			return tables[i].Location < tables[j].Location
		}
		return tables[i].TableNumber < tables[j].TableNumber
	})
	return tables, nil
}

func (r memTables) Update(_ context.Context, t *models.Table) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.tables[t.ID]; !ok {
		return notFound("table", t.ID)
	}
	if r.numberTaken(t.TableNumber, t.ID) {
		return fmt.Errorf("%w: table number %q already exists", models.ErrConflict, t.TableNumber)
	}
	r.tx.st.tables[t.ID] = copyTable(*t)
	return nil
}

func (r memTables) Delete(_ context.Context, id string) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.tables[id]; !ok {
		return notFound("table", id)
	}
	delete(r.tx.st.tables, id)
	return nil
}

// Menu items

type memMenu struct{ tx *memTx }

func (r memMenu) Create(_ context.Context, m *models.MenuItem) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.menu[m.ID]; ok {
		return fmt.Errorf("%w: menu item id %s", models.ErrConflict, m.ID)
	}
	r.tx.st.menu[m.ID] = copyMenuItem(*m)
	return nil
}

func (r memMenu) Get(_ context.Context, id string) (*models.MenuItem, error) {
	m, ok := r.tx.st.menu[id]
	if !ok {
		return nil, notFound("menu item", id)
	}
	m = copyMenuItem(m)
	return &m, nil
}

func (r memMenu) List(_ context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0, len(r.tx.st.menu))
	for _, m := range r.tx.st.menu {
		if filter.Category != "" && m.Category != filter.Category {
			continue
		}
		if filter.AvailableOnly && !m.IsAvailable {
			continue
		}
		items = append(items, copyMenuItem(m))
	}
	sortMenu(items)
	return items, nil
}

func sortMenu(items []models.MenuItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}

func (r memMenu) Update(_ context.Context, m *models.MenuItem) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	stored, ok := r.tx.st.menu[m.ID]
	if !ok {
		return notFound("menu item", m.ID)
	}
	item := copyMenuItem(*m)
	item.StockQuantity = stored.StockQuantity
	r.tx.st.menu[m.ID] = item
	return nil
}

func (r memMenu) Delete(_ context.Context, id string) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.menu[id]; !ok {
		return notFound("menu item", id)
	}
	delete(r.tx.st.menu, id)
	return nil
}

func (r memMenu) AdjustStock(_ context.Context, id string, delta int, now time.Time) (*models.MenuItem, error) {
	if err := r.tx.writable(); err != nil {
		return nil, err
	}
	m, ok := r.tx.st.menu[id]
	if !ok {
		return nil, notFound("menu item", id)
	}
	if m.StockQuantity+delta < 0 {
		return nil, fmt.Errorf("%w: %s has %d, need %d", models.ErrInsufficientStock, m.Name, m.StockQuantity, -delta)
	}
	m.StockQuantity += delta
	m.UpdatedAt = now
	r.tx.st.menu[id] = m
	m = copyMenuItem(m)
	return &m, nil
}

func (r memMenu) ListLowStock(context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	for _, m := range r.tx.st.menu {
		if m.IsAvailable && m.LowStock() {
			items = append(items, copyMenuItem(m))
		}
	}
	sortMenu(items)
	return items, nil
}

func (r memMenu) ListExpiring(_ context.Context, from, to time.Time) ([]models.MenuItem, error) {
	var items []models.MenuItem
	for _, m := range r.tx.st.menu {
		if m.IsAvailable && m.ExpiryDate != nil && !m.ExpiryDate.Before(from) && !m.ExpiryDate.After(to) {
			items = append(items, copyMenuItem(m))
		}
	}
	sortMenu(items)
	return items, nil
}

// Supplies

type memSupplies struct{ tx *memTx }

func (r memSupplies) Create(_ context.Context, s *models.Supply) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.supplies[s.ID]; ok {
		return fmt.Errorf("%w: supply id %s", models.ErrConflict, s.ID)
	}
	r.tx.st.supplies[s.ID] = copySupply(*s)
	return nil
}

func (r memSupplies) Get(_ context.Context, id string) (*models.Supply, error) {
	s, ok := r.tx.st.supplies[id]
	if !ok {
		return nil, notFound("inventory item", id)
	}
	s = copySupply(s)
	return &s, nil
}

func (r memSupplies) List(context.Context) ([]models.Supply, error) {
	supplies := make([]models.Supply, 0, len(r.tx.st.supplies))
	for _, s := range r.tx.st.supplies {
		supplies = append(supplies, copySupply(s))
	}
	sortSupplies(supplies)
	return supplies, nil
}

func sortSupplies(supplies []models.Supply) {
	sort.Slice(supplies, func(i, j int) bool {
		if !supplies[i].DateAdded.Equal(supplies[j].DateAdded) {
			return supplies[i].DateAdded.After(supplies[j].DateAdded)
		}
		return supplies[i].Name < supplies[j].Name
	})
}

func (r memSupplies) Update(_ context.Context, s *models.Supply) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.supplies[s.ID]; !ok {
		return notFound("inventory item", s.ID)
	}
	r.tx.st.supplies[s.ID] = copySupply(*s)
	return nil
}

func (r memSupplies) Delete(_ context.Context, id string) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.supplies[id]; !ok {
		return notFound("inventory item", id)
	}
	delete(r.tx.st.supplies, id)
	return nil
}

func (r memSupplies) ListExpiring(_ context.Context, from, to time.Time) ([]models.Supply, error) {
	var supplies []models.Supply
	for _, s := range r.tx.st.supplies {
		if s.ExpiryDate != nil && !s.ExpiryDate.Before(from) && !s.ExpiryDate.After(to) {
			supplies = append(supplies, copySupply(s))
		}
	}
	sortSupplies(supplies)
	return supplies, nil
}

// Orders

type memOrders struct{ tx *memTx }

func (r memOrders) Create(_ context.Context, o *models.Order) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.orders[o.ID]; ok {
		return fmt.Errorf("%w: order id %s", models.ErrConflict, o.ID)
	}
	r.tx.st.orders[o.ID] = copyOrder(*o)
	return nil
}

func (r memOrders) Get(_ context.Context, id string) (*models.Order, error) {
	o, ok := r.tx.st.orders[id]
	if !ok {
		return nil, notFound("order", id)
	}
	o = copyOrder(o)
	return &o, nil
}

func (r memOrders) List(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(r.tx.st.orders))
	for _, o := range r.tx.st.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Table != "" && o.Table != filter.Table {
			continue
		}
		if !filter.Since.IsZero() && o.CreatedAt.Before(filter.Since) {
			continue
		}
		orders = append(orders, copyOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders, nil
}

func (r memOrders) Update(_ context.Context, o *models.Order) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.orders[o.ID]; !ok {
		return notFound("order", o.ID)
	}
	r.tx.st.orders[o.ID] = copyOrder(*o)
	return nil
}

func (r memOrders) CountOpenByTable(_ context.Context, tableID string) (int, error) {
	n := 0
	for _, o := range r.tx.st.orders {
		if o.Table == tableID && !o.Status.Terminal() {
			n++
		}
	}
	return n, nil
}

// Invoices

type memInvoices struct{ tx *memTx }

func (r memInvoices) Create(_ context.Context, inv *models.Invoice) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.invoices[inv.ID]; ok {
		return fmt.Errorf("%w: invoice id %s", models.ErrConflict, inv.ID)
	}
	for _, existing := range r.tx.st.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return fmt.Errorf("%w: invoice number %q already exists", models.ErrConflict, inv.InvoiceNumber)
		}
	}
	r.tx.st.invoices[inv.ID] = copyInvoice(*inv)
	return nil
}

func (r memInvoices) Get(_ context.Context, id string) (*models.Invoice, error) {
	inv, ok := r.tx.st.invoices[id]
	if !ok {
		return nil, notFound("invoice", id)
	}
	inv = copyInvoice(inv)
	return &inv, nil
}

func (r memInvoices) GetByOrder(_ context.Context, orderID string) (*models.Invoice, error) {
	for _, inv := range r.tx.st.invoices {
		if inv.OrderID != nil && *inv.OrderID == orderID {
			inv = copyInvoice(inv)
			return &inv, nil
		}
	}
	return nil, notFound("invoice for order", orderID)
}

func (r memInvoices) List(_ context.Context, filter models.InvoiceFilter) ([]models.Invoice, error) {
	invoices := make([]models.Invoice, 0, len(r.tx.st.invoices))
	for _, inv := range r.tx.st.invoices {
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		invoices = append(invoices, copyInvoice(inv))
	}
	sort.Slice(invoices, func(i, j int) bool {
		if !invoices[i].Date.Equal(invoices[j].Date) {
			return invoices[i].Date.After(invoices[j].Date)
		}
		return invoices[i].InvoiceNumber < invoices[j].InvoiceNumber
	})
	return invoices, nil
}

func (r memInvoices) Update(_ context.Context, inv *models.Invoice) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.invoices[inv.ID]; !ok {
		return notFound("invoice", inv.ID)
	}
	r.tx.st.invoices[inv.ID] = copyInvoice(*inv)
	return nil
}

func (r memInvoices) Delete(_ context.Context, id string) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.invoices[id]; !ok {
		return notFound("invoice", id)
	}
	delete(r.tx.st.invoices, id)
	return nil
}
