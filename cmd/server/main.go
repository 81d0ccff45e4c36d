package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/auth"
	"github.com/yishak-cs/cafe-pos/internal/database"
	"github.com/yishak-cs/cafe-pos/internal/handlers"
	"github.com/yishak-cs/cafe-pos/internal/messaging"
	"github.com/yishak-cs/cafe-pos/internal/services"
	"github.com/yishak-cs/cafe-pos/pkg/helper"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v\n", err)
	}

	config, err := helper.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := helper.NewLogger(config.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, config, logger)
	stop()
	if err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run owns every resource opened after configuration, so each deferred
// close runs before the process exits.
func run(ctx context.Context, config helper.Config, logger *zap.Logger) error {
	store, err := openStore(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", config.Store, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error("error closing store", zap.Error(err))
		}
	}()

	publisher, broker, closePublisher := openPublisher(config, logger)
	defer closePublisher()

	// Initialize services
	tokens := auth.NewTokenManager(config.Auth.JWTSecret, config.Auth.TokenTTL)
	svc := handlers.Services{
		Tables:   services.NewTableService(store, logger, time.Now),
		Menu:     services.NewMenuService(store, logger, time.Now),
		Supplies: services.NewSupplyService(store, logger, time.Now),
		Orders:   services.NewOrderService(store, publisher, logger, time.Now),
		Invoices: services.NewInvoiceService(store, logger, time.Now),
		Users:    services.NewUserService(store, tokens, logger, time.Now),
		Reports:  services.NewReportService(store, time.Now),
	}

	created, err := svc.Users.EnsureAdmin(ctx, config.Auth.AdminUsername, config.Auth.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Info("admin account created", zap.String("username", config.Auth.AdminUsername))
	}

	if config.Inventory.SeedSampleMenu {
		if _, err := svc.Menu.SeedSampleMenu(ctx); err != nil {
			return fmt.Errorf("failed to seed sample menu: %w", err)
		}
	}

	if err := os.MkdirAll(config.Server.UploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", config.Server.UploadDir, err)
	}

	monitor := services.NewInventoryMonitor(store, publisher, logger,
		config.Inventory.CheckInterval, config.Inventory.ExpiryWindowDays, time.Now)
	go monitor.Run(ctx)

	if config.Server.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	apiHandler := handlers.NewAPIHandler(svc, handlers.Checks{Store: store, Broker: broker}, handlers.Config{
		Production:        config.Server.Production(),
		FrontendURL:       config.Server.FrontendURL,
		StaticDir:         config.Server.StaticDir,
		UploadDir:         config.Server.UploadDir,
		MaxUploadBytes:    config.Server.MaxUploadBytes,
		RateLimitRequests: config.Server.RateLimitRequests,
		RateLimitWindow:   config.Server.RateLimitWindow,
	}, logger)
	router := handlers.NewRouter(apiHandler, logger)

	// Create server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", config.Server.Port), zap.String("env", config.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited properly")
	return nil
}

func openStore(ctx context.Context, config helper.Config, logger *zap.Logger) (database.Store, error) {
	if config.Store == helper.StoreMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return database.NewMemoryStore(), nil
	}

	client, err := database.NewNeo4jClient(ctx, config.Neo4j, logger)
	if err != nil {
		return nil, err
	}
	if err := database.NewMigrator(client, logger).Apply(ctx); err != nil {
		client.Close(context.Background()) //nolint:errcheck
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return database.NewNeo4jStore(client), nil
}

// openPublisher falls back to dropping events when no broker is configured
// or reachable. The returned checker is nil in that case.
func openPublisher(config helper.Config, logger *zap.Logger) (messaging.Publisher, handlers.HealthChecker, func()) {
	if config.RabbitMQ.URL == "" {
		logger.Info("RABBITMQ_URL not set; kitchen tickets and stock alerts are not published")
		return messaging.NopPublisher{}, nil, func() {}
	}

	client, err := messaging.Dial(config.RabbitMQ.URL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ; events are not published", zap.Error(err))
		return messaging.NopPublisher{}, nil, func() {}
	}
	publisher, err := messaging.NewAMQPPublisher(client, config.RabbitMQ.Exchange, logger)
	if err != nil {
		client.Close()
		logger.Error("failed to declare exchange; events are not published", zap.Error(err))
		return messaging.NopPublisher{}, nil, func() {}
	}
	return publisher, client, client.Close
}
