package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Migrator prepares the Neo4j schema: id and business-key uniqueness
// constraints plus lookup indexes.
type Migrator struct {
	client *Neo4jClient
	logger *zap.Logger
}

// NewMigrator creates a new schema migrator
func NewMigrator(client *Neo4jClient, logger *zap.Logger) *Migrator {
	return &Migrator{client: client, logger: logger.Named("migrator")}
}

type schemaStep struct {
	name  string
	query string
}

// Uniqueness of table numbers, usernames and invoice numbers lives here so
// that concurrent creates cannot both commit.
var schemaSteps = []schemaStep{
	{"user_id_unique", `CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`},
	{"user_username_unique", `CREATE CONSTRAINT user_username_unique IF NOT EXISTS FOR (u:User) REQUIRE u.username IS UNIQUE`},
	{"table_id_unique", `CREATE CONSTRAINT table_id_unique IF NOT EXISTS FOR (t:Table) REQUIRE t.id IS UNIQUE`},
	{"table_number_unique", `CREATE CONSTRAINT table_number_unique IF NOT EXISTS FOR (t:Table) REQUIRE t.table_number IS UNIQUE`},
	{"menu_item_id_unique", `CREATE CONSTRAINT menu_item_id_unique IF NOT EXISTS FOR (m:MenuItem) REQUIRE m.id IS UNIQUE`},
	{"supply_id_unique", `CREATE CONSTRAINT supply_id_unique IF NOT EXISTS FOR (s:Supply) REQUIRE s.id IS UNIQUE`},
	{"order_id_unique", `CREATE CONSTRAINT order_id_unique IF NOT EXISTS FOR (o:Order) REQUIRE o.id IS UNIQUE`},
	{"invoice_id_unique", `CREATE CONSTRAINT invoice_id_unique IF NOT EXISTS FOR (i:Invoice) REQUIRE i.id IS UNIQUE`},
	{"invoice_number_unique", `CREATE CONSTRAINT invoice_number_unique IF NOT EXISTS FOR (i:Invoice) REQUIRE i.invoice_number IS UNIQUE`},
	{"menu_item_category", `CREATE INDEX menu_item_category IF NOT EXISTS FOR (m:MenuItem) ON (m.category)`},
	{"order_table", `CREATE INDEX order_table IF NOT EXISTS FOR (o:Order) ON (o.table_id, o.status)`},
	{"order_created_at", `CREATE INDEX order_created_at IF NOT EXISTS FOR (o:Order) ON (o.created_at)`},
	{"invoice_order", `CREATE INDEX invoice_order IF NOT EXISTS FOR (i:Invoice) ON (i.order_id)`},
}

// Apply runs every schema step in order. Steps are idempotent.
func (m *Migrator) Apply(ctx context.Context) error {
	m.logger.Info("applying schema", zap.Int("steps", len(schemaSteps)))

	for _, step := range schemaSteps {
		if err := m.client.ExecuteWrite(ctx, step.query, nil); err != nil {
			return fmt.Errorf("failed to apply %s: %w", step.name, err)
		}
		m.logger.Debug("schema step applied", zap.String("step", step.name))
	}

	m.logger.Info("schema up to date")
	return nil
}
