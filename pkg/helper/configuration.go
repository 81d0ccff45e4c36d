package helper

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	database "github.com/yishak-cs/cafe-pos/internal/database"
)

// Store drivers selectable with STORE_DRIVER
const (
	StoreNeo4j  = "neo4j"
	StoreMemory = "memory"
)

// Config is the complete process configuration, built once at startup
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     string
	Neo4j     database.Config
	Auth      AuthConfig
	RabbitMQ  RabbitMQConfig
	Inventory InventoryConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Env               string
	Port              string
	FrontendURL       string
	StaticDir         string
	UploadDir         string
	MaxUploadBytes    int64
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Production reports whether internal error details must be hidden
func (s ServerConfig) Production() bool { return s.Env == "production" }

// LogConfig selects the zap level and encoder
type LogConfig struct {
	Level       string
	Development bool
}

// AuthConfig holds token and bootstrap admin settings
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

// RabbitMQConfig is optional; an empty URL disables publishing
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// InventoryConfig drives the background stock and expiry checks
type InventoryConfig struct {
	CheckInterval    time.Duration
	ExpiryWindowDays int
	SeedSampleMenu   bool
}

// LoadConfigFromEnv loads configuration from environment variables
func LoadConfigFromEnv() (Config, error) {
	env := getEnvOrDefault("APP_ENV", "development")

	cfg := Config{
		Server: ServerConfig{
			Env:               env,
			Port:              getEnvOrDefault("APP_PORT", "8080"),
			FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
			StaticDir:         getEnvOrDefault("STATIC_DIR", "./web/static"),
			UploadDir:         getEnvOrDefault("UPLOAD_DIR", "./public/uploads"),
			MaxUploadBytes:    1000000,
			RateLimitRequests: 100,
			RateLimitWindow:   15 * time.Minute,
		},
		Log: LogConfig{
			Level:       getEnvOrDefault("LOG_LEVEL", "info"),
			Development: env == "development",
		},
		Store: getEnvOrDefault("STORE_DRIVER", StoreNeo4j),
		Neo4j: database.Config{
			URI:      getEnvOrDefault("NEO4J_URI", ""),
			Username: getEnvOrDefault("NEO4J_USERNAME", "neo4j"),
			Password: getEnvOrDefault("NEO4J_PASSWORD", ""),
			Database: getEnvOrDefault("NEO4J_DATABASE", "neo4j"),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenTTL:      time.Hour,
			AdminUsername: os.Getenv("ADMIN_USERNAME"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Exchange: getEnvOrDefault("RABBITMQ_EXCHANGE", "cafe.events"),
		},
		Inventory: InventoryConfig{
			CheckInterval:    time.Hour,
			ExpiryWindowDays: 7,
		},
	}

	var err error
	if cfg.Server.MaxUploadBytes, err = getEnvInt64("MAX_UPLOAD_BYTES", cfg.Server.MaxUploadBytes); err != nil {
		return cfg, err
	}
	if cfg.Server.RateLimitRequests, err = getEnvInt("RATE_LIMIT_REQUESTS", cfg.Server.RateLimitRequests); err != nil {
		return cfg, err
	}
	if cfg.Server.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", cfg.Server.RateLimitWindow); err != nil {
		return cfg, err
	}
	if cfg.Auth.TokenTTL, err = getEnvDuration("JWT_TTL", cfg.Auth.TokenTTL); err != nil {
		return cfg, err
	}
	if cfg.Inventory.CheckInterval, err = getEnvDuration("INVENTORY_CHECK_INTERVAL", cfg.Inventory.CheckInterval); err != nil {
		return cfg, err
	}
	if cfg.Inventory.SeedSampleMenu, err = getEnvBool("SEED_SAMPLE_MENU", false); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate checks that required settings are present and coherent
func (c Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.Store {
	case StoreNeo4j:
		if c.Neo4j.URI == "" {
			errs = append(errs, errors.New("NEO4J_URI is required when STORE_DRIVER=neo4j"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store))
	}
	if c.Server.RateLimitRequests <= 0 || c.Server.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("rate limit requests and window must be positive"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.Inventory.CheckInterval <= 0 {
		errs = append(errs, errors.New("INVENTORY_CHECK_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
