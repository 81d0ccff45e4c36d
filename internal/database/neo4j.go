package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Config holds the Neo4j connection configuration
type Config struct {
	URI      string
	Username string
	Password string
	Database string // typically "neo4j" for AuraDB
}

// Neo4jClient wraps the Neo4j driver with application-specific methods
type Neo4jClient struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewNeo4jClient creates a new Neo4j client connection
func NewNeo4jClient(ctx context.Context, config Config, logger *zap.Logger) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(config.URI, neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	// Test the connection
	vctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(vctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	logger.Info("connected to Neo4j", zap.String("uri", config.URI), zap.String("database", config.Database))
	return &Neo4jClient{
		driver:   driver,
		database: config.Database,
		logger:   logger,
	}, nil
}

// Close closes the Neo4j driver connection
func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// ExecuteWrite executes a single auto-routed write query (schema statements, maintenance)
func (c *Neo4jClient) ExecuteWrite(ctx context.Context, query string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(
		ctx,
		c.driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database),
		neo4j.ExecuteQueryWithWritersRouting())
	if err != nil {
		return fmt.Errorf("failed to execute write query: %w", err)
	}
	return nil
}

// Health checks the database connection health
func (c *Neo4jClient) Health(ctx context.Context) error {
	_, err := neo4j.ExecuteQuery(
		ctx,
		c.driver,
		"RETURN 1",
		nil,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// ExecuteWriteTransaction runs work inside one managed write transaction.
// The driver retries work on transient failures.
func (c *Neo4jClient) ExecuteWriteTransaction(ctx context.Context, work func(neo4j.ManagedTransaction) error) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, work(tx)
	})
	if err != nil {
		return fmt.Errorf("failed to execute write transaction: %w", translateError(err))
	}
	return nil
}

// ExecuteReadTransaction runs work inside one managed read transaction
func (c *Neo4jClient) ExecuteReadTransaction(ctx context.Context, work func(neo4j.ManagedTransaction) error) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, work(tx)
	})
	if err != nil {
		return fmt.Errorf("failed to execute read transaction: %w", translateError(err))
	}
	return nil
}

// translateError maps unique constraint violations onto models.ErrConflict.
func translateError(err error) error {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && neoErr.Code == constraintViolation {
		return fmt.Errorf("%w: %s", models.ErrConflict, neoErr.Msg)
	}
	return err
}

// Neo4jStore implements Store on top of a Neo4jClient
type Neo4jStore struct {
	client *Neo4jClient
}

// NewNeo4jStore creates a Store backed by Neo4j
func NewNeo4jStore(client *Neo4jClient) *Neo4jStore {
	return &Neo4jStore{client: client}
}

// Read runs work in a managed read transaction
func (s *Neo4jStore) Read(ctx context.Context, work func(Tx) error) error {
	return s.client.ExecuteReadTransaction(ctx, func(tx neo4j.ManagedTransaction) error {
		return work(&neoTx{tx: tx})
	})
}

// Write runs work in a managed write transaction
func (s *Neo4jStore) Write(ctx context.Context, work func(Tx) error) error {
	return s.client.ExecuteWriteTransaction(ctx, func(tx neo4j.ManagedTransaction) error {
		return work(&neoTx{tx: tx})
	})
}

// Health verifies connectivity
func (s *Neo4jStore) Health(ctx context.Context) error { return s.client.Health(ctx) }

// Close closes the driver
func (s *Neo4jStore) Close(ctx context.Context) error { return s.client.Close(ctx) }
