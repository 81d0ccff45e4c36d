package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "APP_PORT", "FRONTEND_URL", "STATIC_DIR", "UPLOAD_DIR", "MAX_UPLOAD_BYTES",
	"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "LOG_LEVEL", "STORE_DRIVER",
	"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "NEO4J_DATABASE",
	"JWT_SECRET", "JWT_TTL", "ADMIN_USERNAME", "ADMIN_PASSWORD",
	"RABBITMQ_URL", "RABBITMQ_EXCHANGE", "INVENTORY_CHECK_INTERVAL", "SEED_SAMPLE_MENU",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("NEO4J_URI", "neo4j://localhost:7687")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.False(t, cfg.Server.Production())
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, int64(1000000), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 100, cfg.Server.RateLimitRequests)
	assert.Equal(t, 15*time.Minute, cfg.Server.RateLimitWindow)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, StoreNeo4j, cfg.Store)
	assert.Equal(t, "neo4j", cfg.Neo4j.Database)
	assert.Equal(t, "cafe.events", cfg.RabbitMQ.Exchange)
	assert.Equal(t, time.Hour, cfg.Inventory.CheckInterval)
	assert.Equal(t, 7, cfg.Inventory.ExpiryWindowDays)
	assert.False(t, cfg.Inventory.SeedSampleMenu)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("SEED_SAMPLE_MENU", "true")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.Server.Production())
	assert.False(t, cfg.Log.Development)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 5, cfg.Server.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.Server.RateLimitWindow)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Inventory.SeedSampleMenu)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"STORE_DRIVER": StoreMemory}, "JWT_SECRET is required"},
		{"missing neo4j uri", map[string]string{"JWT_SECRET": "s"}, "NEO4J_URI is required"},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "sqlite"}, "unknown STORE_DRIVER"},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": StoreMemory, "JWT_TTL": "soon"}, "invalid JWT_TTL"},
		{"bad int", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": StoreMemory, "RATE_LIMIT_REQUESTS": "many"}, "invalid RATE_LIMIT_REQUESTS"},
		{"zero limit", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": StoreMemory, "RATE_LIMIT_REQUESTS": "0"}, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfigFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = NewLogger(LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(0))

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
