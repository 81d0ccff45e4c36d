package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yishak-cs/cafe-pos/internal/auth"
	"github.com/yishak-cs/cafe-pos/internal/services"
)

// Config is the HTTP surface part of the process configuration
type Config struct {
	Production        bool
	FrontendURL       string
	StaticDir         string
	UploadDir         string
	MaxUploadBytes    int64
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Checks are the dependencies /api/status reports on. Broker is nil when
// messaging is not configured.
type Checks struct {
	Store  HealthChecker
	Broker HealthChecker
}

// Services are the use cases the API exposes
type Services struct {
	Tables   *services.TableService
	Menu     *services.MenuService
	Supplies *services.SupplyService
	Orders   *services.OrderService
	Invoices *services.InvoiceService
	Users    *services.UserService
	Reports  *services.ReportService
}

// APIHandler handles all API requests
type APIHandler struct {
	tables   *services.TableService
	menu     *services.MenuService
	supplies *services.SupplyService
	orders   *services.OrderService
	invoices *services.InvoiceService
	users    *services.UserService
	reports  *services.ReportService
	checks   Checks
	cfg      Config
	logger   *zap.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(svc Services, checks Checks, cfg Config, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		tables:   svc.Tables,
		menu:     svc.Menu,
		supplies: svc.Supplies,
		orders:   svc.Orders,
		invoices: svc.Invoices,
		users:    svc.Users,
		reports:  svc.Reports,
		checks:   checks,
		cfg:      cfg,
		logger:   logger.Named("api"),
	}
}

// NewRouter builds the gin engine: middleware, API routes, uploaded files
// and the single page app fallback.
func NewRouter(h *APIHandler, logger *zap.Logger) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(
		RequestLogger(logger),
		Recovery(logger),
		SecurityHeaders(),
		CORS(h.cfg.FrontendURL),
		NewRateLimiter(h.cfg.RateLimitRequests, h.cfg.RateLimitWindow).Middleware(),
	)
	router.MaxMultipartMemory = h.cfg.MaxUploadBytes

	h.SetupRoutes(router)
	router.Static("/uploads", h.cfg.UploadDir)

	index := filepath.Join(h.cfg.StaticDir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			abortWith(c, http.StatusNotFound, "API endpoint not found")
			return
		}
		c.File(index)
	})

	return router
}

// SetupRoutes configures all API routes. Every authenticated route names
// the permission it needs.
func (h *APIHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/status", h.Status)

	public := api.Group("/auth")
	{
		public.POST("/login", h.Login)
		public.POST("/register", h.Register)
		public.POST("/logout", h.Logout)
	}

	secured := api.Group("", h.Authenticate())
	secured.GET("/auth/me", h.Me)

	tables := secured.Group("/tables")
	{
		tables.GET("", Authorize(auth.TablesRead), h.ListTables)
		tables.POST("", Authorize(auth.TablesManage), h.CreateTable)
		tables.POST("/merge", Authorize(auth.TablesManage), h.MergeTables)
		tables.GET("/:id", Authorize(auth.TablesRead), h.GetTable)
		tables.PUT("/:id", Authorize(auth.TablesManage), h.UpdateTable)
		tables.PUT("/:id/position", Authorize(auth.TablesLayout), h.UpdateTablePosition)
		tables.DELETE("/:id", Authorize(auth.TablesManage), h.DeleteTable)
	}

	menu := secured.Group("/menu-items")
	{
		menu.GET("", Authorize(auth.MenuRead), h.ListMenuItems)
		menu.GET("/low-stock", Authorize(auth.InventoryRead), h.LowStockMenuItems)
		menu.POST("", Authorize(auth.MenuManage), h.CreateMenuItem)
		menu.GET("/:id", Authorize(auth.MenuRead), h.GetMenuItem)
		menu.PUT("/:id", Authorize(auth.MenuManage), h.UpdateMenuItem)
		menu.DELETE("/:id", Authorize(auth.MenuManage), h.DeleteMenuItem)
		menu.POST("/:id/stock", Authorize(auth.InventoryManage), h.AdjustMenuItemStock)
		menu.POST("/:id/image", Authorize(auth.MenuManage), h.UploadMenuItemImage)
	}

	inventory := secured.Group("/inventory")
	{
		inventory.GET("", Authorize(auth.InventoryRead), h.ListSupplies)
		inventory.POST("", Authorize(auth.InventoryManage), h.CreateSupply)
		inventory.POST("/sample", Authorize(auth.InventoryManage), h.AddSampleSupplies)
		inventory.GET("/:id", Authorize(auth.InventoryRead), h.GetSupply)
		inventory.PUT("/:id", Authorize(auth.InventoryManage), h.UpdateSupply)
		inventory.DELETE("/:id", Authorize(auth.InventoryManage), h.DeleteSupply)
		inventory.POST("/:id/image", Authorize(auth.InventoryManage), h.UploadSupplyImage)
	}

	orders := secured.Group("/orders")
	{
		orders.GET("", Authorize(auth.OrdersRead), h.ListOrders)
		orders.POST("", Authorize(auth.OrdersCreate), h.PlaceOrder)
		orders.GET("/:id", Authorize(auth.OrdersRead), h.GetOrder)
		orders.PUT("/:id/status", Authorize(auth.OrdersStatus), h.UpdateOrderStatus)
		orders.DELETE("/:id", Authorize(auth.OrdersCancel), h.CancelOrder)
	}

	invoices := secured.Group("/invoices")
	{
		invoices.GET("", Authorize(auth.InvoicesRead), h.ListInvoices)
		invoices.POST("", Authorize(auth.InvoicesCreate), h.CreateInvoice)
		invoices.GET("/:id", Authorize(auth.InvoicesRead), h.GetInvoice)
		invoices.PUT("/:id", Authorize(auth.InvoicesUpdate), h.UpdateInvoice)
		invoices.DELETE("/:id", Authorize(auth.InvoicesDelete), h.DeleteInvoice)
	}

	users := secured.Group("/users", Authorize(auth.UsersManage))
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	reports := secured.Group("/reports", Authorize(auth.ReportsRead))
	{
		reports.GET("/top-items", h.TopItems)
		reports.GET("/summary", h.SalesSummary)
	}
}

// Status reports liveness and the reachability of the store and broker.
// Only an unreachable store makes the service unavailable.
func (h *APIHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	store := "ok"
	status := http.StatusOK
	if err := h.checks.Store.Health(ctx); err != nil {
		h.logger.Warn("store health check failed", zap.Error(err))
		store = "unavailable"
		status = http.StatusServiceUnavailable
	}

	broker := "disabled"
	if h.checks.Broker != nil {
		broker = "ok"
		if err := h.checks.Broker.Health(ctx); err != nil {
			h.logger.Warn("broker health check failed", zap.Error(err))
			broker = "unavailable"
		}
	}

	c.JSON(status, envelope{
		Success: status == http.StatusOK,
		Data:    gin.H{"status": "running", "store": store, "broker": broker, "time": time.Now().UTC()},
	})
}
