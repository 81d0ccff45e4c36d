package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

// Every query below projects its rows as a map named n.

type neoTx struct {
	tx neo4j.ManagedTransaction
}

func (t *neoTx) Users() UserRepository         { return neoUsers{t.tx} }
func (t *neoTx) Tables() TableRepository       { return neoTables{t.tx} }
func (t *neoTx) MenuItems() MenuItemRepository { return neoMenu{t.tx} }
func (t *neoTx) Supplies() SupplyRepository    { return neoSupplies{t.tx} }
func (t *neoTx) Orders() OrderRepository       { return neoOrders{t.tx} }
func (t *neoTx) Invoices() InvoiceRepository   { return neoInvoices{t.tx} }

func collect(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) ([]map[string]any, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect results: %w", err)
	}

	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		value, ok := record.Get("n")
		if !ok {
			continue
		}
		if row, ok := value.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func single(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) (map[string]any, bool, error) {
	rows, err := collect(ctx, tx, query, params)
	if err != nil || len(rows) == 0 {
		return nil, false, err
	}
	return rows[0], true, nil
}

// count runs a query returning a single integer column named count.
func count(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) (int, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read count: %w", err)
	}
	value, _ := record.Get("count")
	n, _ := value.(int64)
	return int(n), nil
}

// exec runs a mutating query that reports the number of touched nodes.
func exec(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any, kind, id string) error {
	n, err := count(ctx, tx, query, params)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func integer(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func float(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func boolean(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func timestamp(m map[string]any, key string) time.Time {
	v, _ := m[key].(time.Time)
	return v
}

func optionalTime(m map[string]any, key string) *time.Time {
	v, ok := m[key].(time.Time)
	if !ok {
		return nil
	}
	return &v
}

func optionalString(m map[string]any, key string) *string {
	v, ok := m[key].(string)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// Pointer fields are passed as untyped nil so SET += removes the property.
func param[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Users

type neoUsers struct{ tx neo4j.ManagedTransaction }

func userProps(u *models.User) map[string]any {
	return map[string]any{
		"id":            u.ID,
		"username":      u.Username,
		"password_hash": u.PasswordHash,
		"role":          string(u.Role),
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
}

func userFrom(m map[string]any) models.User {
	return models.User{
		ID:           str(m, "id"),
		Username:     str(m, "username"),
		PasswordHash: str(m, "password_hash"),
		Role:         models.Role(str(m, "role")),
		CreatedAt:    timestamp(m, "created_at"),
		UpdatedAt:    timestamp(m, "updated_at"),
	}
}

func (r neoUsers) Create(ctx context.Context, u *models.User) error {
	_, err := collect(ctx, r.tx, `CREATE (u:User $props) RETURN u {.*} AS n`, map[string]any{"props": userProps(u)})
	return err
}

func (r neoUsers) Get(ctx context.Context, id string) (*models.User, error) {
	row, ok, err := single(ctx, r.tx, `MATCH (u:User {id: $id}) RETURN u {.*} AS n`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("user", id)
	}
	u := userFrom(row)
	return &u, nil
}

func (r neoUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row, ok, err := single(ctx, r.tx, `MATCH (u:User {username: $username}) RETURN u {.*} AS n`, map[string]any{"username": username})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("user", username)
	}
	u := userFrom(row)
	return &u, nil
}

func (r neoUsers) List(ctx context.Context) ([]models.User, error) {
	rows, err := collect(ctx, r.tx, `MATCH (u:User) RETURN u {.*} AS n ORDER BY n.username`, nil)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userFrom(row))
	}
	return users, nil
}

func (r neoUsers) Update(ctx context.Context, u *models.User) error {
	return exec(ctx, r.tx, `
		MATCH (u:User {id: $id})
		SET u += $props
		RETURN count(u) AS count
	`, map[string]any{"id": u.ID, "props": userProps(u)}, "user", u.ID)
}

func (r neoUsers) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.tx, `MATCH (u:User {id: $id}) DETACH DELETE u RETURN count(u) AS count`,
		map[string]any{"id": id}, "user", id)
}

func (r neoUsers) CountByRole(ctx context.Context, role models.Role) (int, error) {
	return count(ctx, r.tx, `MATCH (u:User {role: $role}) RETURN count(u) AS count`, map[string]any{"role": string(role)})
}

// Tables

type neoTables struct{ tx neo4j.ManagedTransaction }

func tableProps(t *models.Table) map[string]any {
	return map[string]any{
		"id":              t.ID,
		"table_number":    t.TableNumber,
		"seats":           t.Seats,
		"location":        t.Location,
		"status":          string(t.Status),
		"assigned_waiter": param(t.AssignedWaiter),
		"pos_x":           t.Position.X,
		"pos_y":           t.Position.Y,
		"created_at":      t.CreatedAt,
		"updated_at":      t.UpdatedAt,
	}
}

func tableFrom(m map[string]any) models.Table {
	return models.Table{
		ID:             str(m, "id"),
		TableNumber:    str(m, "table_number"),
		Seats:          integer(m, "seats"),
		Location:       str(m, "location"),
		Status:         models.TableStatus(str(m, "status")),
		AssignedWaiter: optionalString(m, "assigned_waiter"),
		Position:       models.Position{X: float(m, "pos_x"), Y: float(m, "pos_y")},
		CreatedAt:      timestamp(m, "created_at"),
		UpdatedAt:      timestamp(m, "updated_at"),
	}
}

func (r neoTables) Create(ctx context.Context, t *models.Table) error {
	_, err := collect(ctx, r.tx, `CREATE (t:Table $props) RETURN t {.*} AS n`, map[string]any{"props": tableProps(t)})
	return err
}

func (r neoTables) Get(ctx context.Context, id string) (*models.Table, error) {
	row, ok, err := single(ctx, r.tx, `MATCH (t:Table {id: $id}) RETURN t {.*} AS n`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("table", id)
	}
	t := tableFrom(row)
	return &t, nil
}

func (r neoTables) List(ctx context.Context, filter models.TableFilter) ([]models.Table, error) {
	rows, err := collect(ctx, r.tx, `
		MATCH (t:Table)
		WHERE $status = '' OR t.status = $status
		RETURN t {.*} AS n
		ORDER BY n.location, n.table_number
	`, map[string]any{"status": string(filter.Status)})
	if err != nil {
		return nil, err
	}
	tables := make([]models.Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, tableFrom(row))
	}
	return tables, nil
}

func (r neoTables) Update(ctx context.Context, t *models.Table) error {
	return exec(ctx, r.tx, `
		MATCH (t:Table {id: $id})
		SET t += $props
		RETURN count(t) AS count
	`, map[string]any{"id": t.ID, "props": tableProps(t)}, "table", t.ID)
}

func (r neoTables) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.tx, `MATCH (t:Table {id: $id}) DETACH DELETE t RETURN count(t) AS count`,
		map[string]any{"id": id}, "table", id)
}

// Menu items

type neoMenu struct{ tx neo4j.ManagedTransaction }

func menuProps(m *models.MenuItem) map[string]any {
	return map[string]any{
		"id":             m.ID,
		"name":           m.Name,
		"description":    m.Description,
		"price":          m.Price,
		"category":       m.Category,
		"image":          m.Image,
		"stock_quantity": m.StockQuantity,
		"minimum_stock":  m.MinimumStock,
		"expiry_date":    param(m.ExpiryDate),
		"is_available":   m.IsAvailable,
		"created_at":     m.CreatedAt,
		"updated_at":     m.UpdatedAt,
	}
}

func menuFrom(m map[string]any) models.MenuItem {
	return models.MenuItem{
		ID:            str(m, "id"),
		Name:          str(m, "name"),
		Description:   str(m, "description"),
		Price:         float(m, "price"),
		Category:      str(m, "category"),
		Image:         str(m, "image"),
		StockQuantity: integer(m, "stock_quantity"),
		MinimumStock:  integer(m, "minimum_stock"),
		ExpiryDate:    optionalTime(m, "expiry_date"),
		IsAvailable:   boolean(m, "is_available"),
		CreatedAt:     timestamp(m, "created_at"),
		UpdatedAt:     timestamp(m, "updated_at"),
	}
}

func menuList(rows []map[string]any) []models.MenuItem {
	items := make([]models.MenuItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, menuFrom(row))
	}
	return items
}

func (r neoMenu) Create(ctx context.Context, m *models.MenuItem) error {
	_, err := collect(ctx, r.tx, `CREATE (m:MenuItem $props) RETURN m {.*} AS n`, map[string]any{"props": menuProps(m)})
	return err
}

func (r neoMenu) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	row, ok, err := single(ctx, r.tx, `MATCH (m:MenuItem {id: $id}) RETURN m {.*} AS n`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("menu item", id)
	}
	m := menuFrom(row)
	return &m, nil
}

func (r neoMenu) List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	rows, err := collect(ctx, r.tx, `
		MATCH (m:MenuItem)
		WHERE ($category = '' OR m.category = $category)
		  AND (NOT $availableOnly OR m.is_available)
		RETURN m {.*} AS n
		ORDER BY n.category, toLower(n.name)
	`, map[string]any{"category": filter.Category, "availableOnly": filter.AvailableOnly})
	if err != nil {
		return nil, err
	}
	return menuList(rows), nil
}

func (r neoMenu) Update(ctx context.Context, m *models.MenuItem) error {
	return exec(ctx, r.tx, `
		MATCH (m:MenuItem {id: $id})
		SET m += $props
		RETURN count(m) AS count
	`, map[string]any{"id": m.ID, "props": menuUpdateProps(m)}, "menu item", m.ID)
}

// menuUpdateProps leaves stock_quantity out so a metadata edit never
// overwrites a concurrent AdjustStock.
func menuUpdateProps(m *models.MenuItem) map[string]any {
	props := menuProps(m)
	delete(props, "stock_quantity")
	return props
}

func (r neoMenu) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.tx, `MATCH (m:MenuItem {id: $id}) DETACH DELETE m RETURN count(m) AS count`,
		map[string]any{"id": id}, "menu item", id)
}

// AdjustStock relies on Cypher taking the node write lock before reading
// stock_quantity, since the new value depends directly on the old one.
// A negative result is rejected in Go, which rolls the transaction back.
func (r neoMenu) AdjustStock(ctx context.Context, id string, delta int, now time.Time) (*models.MenuItem, error) {
	row, ok, err := single(ctx, r.tx, `
		MATCH (m:MenuItem {id: $id})
		SET m.stock_quantity = m.stock_quantity + $delta, m.updated_at = $now
		RETURN m {.*} AS n
	`, map[string]any{"id": id, "delta": delta, "now": now})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("menu item", id)
	}
	m := menuFrom(row)
	if m.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: %s has %d, need %d", models.ErrInsufficientStock, m.Name, m.StockQuantity-delta, -delta)
	}
	return &m, nil
}

func (r neoMenu) ListLowStock(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := collect(ctx, r.tx, `
		MATCH (m:MenuItem)
		WHERE m.is_available AND m.stock_quantity <= m.minimum_stock
		RETURN m {.*} AS n
		ORDER BY n.category, toLower(n.name)
	`, nil)
	if err != nil {
		return nil, err
	}
	return menuList(rows), nil
}

func (r neoMenu) ListExpiring(ctx context.Context, from, to time.Time) ([]models.MenuItem, error) {
	rows, err := collect(ctx, r.tx, `
		MATCH (m:MenuItem)
		WHERE m.is_available AND m.expiry_date IS NOT NULL
		  AND m.expiry_date >= $from AND m.expiry_date <= $to
		RETURN m {.*} AS n
		ORDER BY n.category, toLower(n.name)
	`, map[string]any{"from": from, "to": to})
	if err != nil {
		return nil, err
	}
	return menuList(rows), nil
}

// Supplies

type neoSupplies struct{ tx neo4j.ManagedTransaction }

func supplyProps(s *models.Supply) map[string]any {
	return map[string]any{
		"id":            s.ID,
		"name":          s.Name,
		"brand":         s.Brand,
		"specification": s.Specification,
		"expiry_date":   param(s.ExpiryDate),
		"cost_price":    s.CostPrice,
		"quantity":      s.Quantity,
		"image":         s.Image,
		"date_added":    s.DateAdded,
		"last_updated":  s.LastUpdated,
	}
}

func supplyFrom(m map[string]any) models.Supply {
	return models.Supply{
		ID:            str(m, "id"),
		Name:          str(m, "name"),
		Brand:         str(m, "brand"),
		Specification: str(m, "specification"),
		ExpiryDate:    optionalTime(m, "expiry_date"),
		CostPrice:     float(m, "cost_price"),
		Quantity:      integer(m, "quantity"),
		Image:         str(m, "image"),
		DateAdded:     timestamp(m, "date_added"),
		LastUpdated:   timestamp(m, "last_updated"),
	}
}

func supplyList(rows []map[string]any) []models.Supply {
	supplies := make([]models.Supply, 0, len(rows))
	for _, row := range rows {
		supplies = append(supplies, supplyFrom(row))
	}
	return supplies
}

func (r neoSupplies) Create(ctx context.Context, s *models.Supply) error {
	_, err := collect(ctx, r.tx, `CREATE (s:Supply $props) RETURN s {.*} AS n`, map[string]any{"props": supplyProps(s)})
	return err
}

func (r neoSupplies) Get(ctx context.Context, id string) (*models.Supply, error) {
	row, ok, err := single(ctx, r.tx, `MATCH (s:Supply {id: $id}) RETURN s {.*} AS n`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("inventory item", id)
	}
	s := supplyFrom(row)
	return &s, nil
}

func (r neoSupplies) List(ctx context.Context) ([]models.Supply, error) {
	rows, err := collect(ctx, r.tx, `MATCH (s:Supply) RETURN s {.*} AS n ORDER BY n.date_added DESC, n.name`, nil)
	if err != nil {
		return nil, err
	}
	return supplyList(rows), nil
}

func (r neoSupplies) Update(ctx context.Context, s *models.Supply) error {
	return exec(ctx, r.tx, `
		MATCH (s:Supply {id: $id})
		SET s += $props
		RETURN count(s) AS count
	`, map[string]any{"id": s.ID, "props": supplyProps(s)}, "inventory item", s.ID)
}

func (r neoSupplies) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.tx, `MATCH (s:Supply {id: $id}) DETACH DELETE s RETURN count(s) AS count`,
		map[string]any{"id": id}, "inventory item", id)
}

func (r neoSupplies) ListExpiring(ctx context.Context, from, to time.Time) ([]models.Supply, error) {
	rows, err := collect(ctx, r.tx, `
		MATCH (s:Supply)
		WHERE s.expiry_date IS NOT NULL AND s.expiry_date >= $from AND s.expiry_date <= $to
		RETURN s {.*} AS n
		ORDER BY n.date_added DESC, n.name
	`, map[string]any{"from": from, "to": to})
	if err != nil {
		return nil, err
	}
	return supplyList(rows), nil
}

// Orders

type neoOrders struct{ tx neo4j.ManagedTransaction }

func orderProps(o *models.Order) (map[string]any, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}
	return map[string]any{
		"id":                    o.ID,
		"table_id":              o.Table,
		"table_number":          o.TableNumber,
		"items":                 string(items),
		"order_type":            string(o.OrderType),
		"status":                string(o.Status),
		"discount":              o.Discount,
		"taxes":                 o.Taxes,
		"service_charge":        o.ServiceCharge,
		"subtotal":              o.Subtotal,
		"discount_amount":       o.DiscountAmount,
		"tax_amount":            o.TaxAmount,
		"service_charge_amount": o.ServiceChargeAmount,
		"total_amount":          o.TotalAmount,
		"created_by":            o.CreatedBy,
		"created_by_name":       o.CreatedByName,
		"created_at":            o.CreatedAt,
		"updated_at":            o.UpdatedAt,
	}, nil
}

func orderFrom(m map[string]any) (models.Order, error) {
	o := models.Order{
		ID:                  str(m, "id"),
		Table:               str(m, "table_id"),
		TableNumber:         str(m, "table_number"),
		OrderType:           models.OrderType(str(m, "order_type")),
		Status:              models.OrderStatus(str(m, "status")),
		Discount:            float(m, "discount"),
		Taxes:               float(m, "taxes"),
		ServiceCharge:       float(m, "service_charge"),
		Subtotal:            float(m, "subtotal"),
		DiscountAmount:      float(m, "discount_amount"),
		TaxAmount:           float(m, "tax_amount"),
		ServiceChargeAmount: float(m, "service_charge_amount"),
		TotalAmount:         float(m, "total_amount"),
		CreatedBy:           str(m, "created_by"),
		CreatedByName:       str(m, "created_by_name"),
		CreatedAt:           timestamp(m, "created_at"),
		UpdatedAt:           timestamp(m, "updated_at"),
	}
	if raw := str(m, "items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &o.Items); err != nil {
			return o, fmt.Errorf("failed to decode items of order %s: %w", o.ID, err)
		}
	}
	return o, nil
}

// Create also links the order to the user who placed it.
func (r neoOrders) Create(ctx context.Context, o *models.Order) error {
	props, err := orderProps(o)
	if err != nil {
		return err
	}
	_, err = collect(ctx, r.tx, `
		CREATE (o:Order $props)
		WITH o
		OPTIONAL MATCH (u:User {id: $props.created_by})
		FOREACH (x IN CASE WHEN u IS NULL THEN [] ELSE [1] END | MERGE (u)-[:HAS_MADE]->(o))
		RETURN o {.*} AS n
	`, map[string]any{"props": props})
	return err
}

func (r neoOrders) Get(ctx context.Context, id string) (*models.Order, error) {
	row, ok, err := single(ctx, r.tx, `MATCH (o:Order {id: $id}) RETURN o {.*} AS n`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("order", id)
	}
	o, err := orderFrom(row)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r neoOrders) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var since any
	if !filter.Since.IsZero() {
		since = filter.Since
	}
	rows, err := collect(ctx, r.tx, `
		MATCH (o:Order)
		WHERE ($status = '' OR o.status = $status)
		  AND ($table = '' OR o.table_id = $table)
		  AND ($since IS NULL OR o.created_at >= $since)
		RETURN o {.*} AS n
		ORDER BY n.created_at DESC, n.id
	`, map[string]any{"status": string(filter.Status), "table": filter.Table, "since": since})
	if err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		o, err := orderFrom(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r neoOrders) Update(ctx context.Context, o *models.Order) error {
	props, err := orderProps(o)
	if err != nil {
		return err
	}
	return exec(ctx, r.tx, `
		MATCH (o:Order {id: $id})
		SET o += $props
		RETURN count(o) AS count
	`, map[string]any{"id": o.ID, "props": props}, "order", o.ID)
}

func (r neoOrders) CountOpenByTable(ctx context.Context, tableID string) (int, error) {
	return count(ctx, r.tx, `
		MATCH (o:Order {table_id: $table})
		WHERE NOT o.status IN $terminal
		RETURN count(o) AS count
	`, map[string]any{
		"table":    tableID,
		"terminal": []any{string(models.OrderCompleted), string(models.OrderCancelled)},
	})
}

// Invoices

type neoInvoices struct{ tx neo4j.ManagedTransaction }

func invoiceProps(inv *models.Invoice) (map[string]any, error) {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice items: %w", err)
	}
	customer, err := json.Marshal(inv.CustomerDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to encode customer details: %w", err)
	}
	return map[string]any{
		"id":                  inv.ID,
		"invoice_number":      inv.InvoiceNumber,
		"customer":            string(customer),
		"items":               string(items),
		"tax_rate":            inv.TaxRate,
		"service_charge_rate": inv.ServiceChargeRate,
		"discount_rate":       inv.DiscountRate,
		"subtotal":            inv.Subtotal,
		"tax":                 inv.Tax,
		"service_charge":      inv.ServiceCharge,
		"discount":            inv.Discount,
		"total":               inv.Total,
		"date":                inv.Date,
		"status":              string(inv.Status),
		"order_id":            param(inv.OrderID),
		"created_by":          inv.CreatedBy,
		"created_at":          inv.CreatedAt,
		"updated_at":          inv.UpdatedAt,
	}, nil
}

func invoiceFrom(m map[string]any) (models.Invoice, error) {
	inv := models.Invoice{
		ID:                str(m, "id"),
		InvoiceNumber:     str(m, "invoice_number"),
		TaxRate:           float(m, "tax_rate"),
		ServiceChargeRate: float(m, "service_charge_rate"),
		DiscountRate:      float(m, "discount_rate"),
		Subtotal:          float(m, "subtotal"),
		Tax:               float(m, "tax"),
		ServiceCharge:     float(m, "service_charge"),
		Discount:          float(m, "discount"),
		Total:             float(m, "total"),
		Date:              timestamp(m, "date"),
		Status:            models.InvoiceStatus(str(m, "status")),
		OrderID:           optionalString(m, "order_id"),
		CreatedBy:         str(m, "created_by"),
		CreatedAt:         timestamp(m, "created_at"),
		UpdatedAt:         timestamp(m, "updated_at"),
	}
	if raw := str(m, "items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &inv.Items); err != nil {
			return inv, fmt.Errorf("failed to decode items of invoice %s: %w", inv.ID, err)
		}
	}
	if raw := str(m, "customer"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &inv.CustomerDetails); err != nil {
			return inv, fmt.Errorf("failed to decode customer of invoice %s: %w", inv.ID, err)
		}
	}
	return inv, nil
}

func (r neoInvoices) one(ctx context.Context, query string, params map[string]any, kind, id string) (*models.Invoice, error) {
	row, ok, err := single(ctx, r.tx, query, params)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(kind, id)
	}
	inv, err := invoiceFrom(row)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r neoInvoices) Create(ctx context.Context, inv *models.Invoice) error {
	props, err := invoiceProps(inv)
	if err != nil {
		return err
	}
	_, err = collect(ctx, r.tx, `CREATE (i:Invoice $props) RETURN i {.*} AS n`, map[string]any{"props": props})
	return err
}

func (r neoInvoices) Get(ctx context.Context, id string) (*models.Invoice, error) {
	return r.one(ctx, `MATCH (i:Invoice {id: $id}) RETURN i {.*} AS n`, map[string]any{"id": id}, "invoice", id)
}

func (r neoInvoices) GetByOrder(ctx context.Context, orderID string) (*models.Invoice, error) {
	return r.one(ctx, `MATCH (i:Invoice {order_id: $order}) RETURN i {.*} AS n LIMIT 1`,
		map[string]any{"order": orderID}, "invoice for order", orderID)
}

func (r neoInvoices) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, error) {
	rows, err := collect(ctx, r.tx, `
		MATCH (i:Invoice)
		WHERE $status = '' OR i.status = $status
		RETURN i {.*} AS n
		ORDER BY n.date DESC, n.invoice_number
	`, map[string]any{"status": string(filter.Status)})
	if err != nil {
		return nil, err
	}
	invoices := make([]models.Invoice, 0, len(rows))
	for _, row := range rows {
		inv, err := invoiceFrom(row)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (r neoInvoices) Update(ctx context.Context, inv *models.Invoice) error {
	props, err := invoiceProps(inv)
	if err != nil {
		return err
	}
	return exec(ctx, r.tx, `
		MATCH (i:Invoice {id: $id})
		SET i += $props
		RETURN count(i) AS count
	`, map[string]any{"id": inv.ID, "props": props}, "invoice", inv.ID)
}

func (r neoInvoices) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.tx, `MATCH (i:Invoice {id: $id}) DETACH DELETE i RETURN count(i) AS count`,
		map[string]any{"id": id}, "invoice", id)
}
