// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"cajaflow/internal/core/events"
	"cajaflow/internal/core/tenant"
	"cajaflow/internal/domain/audit"
	"cajaflow/internal/domain/booking"
	"cajaflow/internal/domain/cashsession"
	"cajaflow/internal/domain/customer"
	"cajaflow/internal/domain/metrics"
	"cajaflow/internal/domain/order"
	"cajaflow/internal/domain/payment"
	"cajaflow/internal/infrastructure/http/v1/handlers"
	"cajaflow/internal/infrastructure/http/v1/middleware"
	"cajaflow/internal/infrastructure/storage/postgres"
	"cajaflow/internal/infrastructure/storage/postgres/catalog_repo"
	"cajaflow/internal/infrastructure/storage/postgres/document_repo"
	"cajaflow/pkg/logger"
	"cajaflow/pkg/numerator"
)

// RouterConfig holds router configuration for multi-tenant architecture.
type RouterConfig struct {
	// TenantManager manages database connections for all tenants
	TenantManager *tenant.Manager

	// MetaPool is connection to meta-database (for health checks)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation; nil disables auth
	JWTValidator middleware.JWTValidator

	// Numerator for document number generation
	Numerator numerator.Generator

	// Bus carries the typed in-process events
	Bus *events.Bus
}

// NewRouter creates and configures the Gin router for multi-tenant architecture.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.MetaPool, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/tenants", healthHandler.TenantsStats)
	}

	// API v1 - TenantDB resolves the pool per request, then optional auth
	v1 := router.Group("/api/v1")
	v1.Use(middleware.TenantDB(cfg.TenantManager))
	v1.Use(middleware.Auth(cfg.JWTValidator))

	registerRoutes(v1, cfg)

	return router
}

// registerRoutes wires repositories, services and handlers.
// Repos and services are created once; the TxManager is obtained from
// context per-request.
func registerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	if cfg.Numerator == nil {
		cfg.Numerator = numerator.NewFromContext()
	}

	sessionRepo := document_repo.NewCashSessionRepo()
	orderRepo := document_repo.NewOrderRepo()
	bookingRepo := document_repo.NewBookingRepo()
	customerRepo := catalog_repo.NewCustomerRepo()

	var recorder audit.Recorder
	if auditSvc, err := postgres.NewAuditService(); err == nil {
		recorder = postgres.NewRecorder(auditSvc)
	}

	sessionService := cashsession.NewService(sessionRepo, cfg.Numerator, nil, cfg.Bus, recorder)
	orderService := order.NewService(orderRepo, cfg.Numerator, nil)
	bookingService := booking.NewService(bookingRepo, cfg.Numerator, nil)
	customerService := customer.NewService(customerRepo, nil)

	reconciler := payment.NewReconciler(orderRepo, bookingRepo, customerRepo, orderService, sessionService, nil, cfg.Bus, recorder)

	metricsService := metrics.NewService(sessionRepo, orderRepo, bookingRepo)

	handlers.NewCashSessionHandler(baseHandler, sessionService).RegisterRoutes(rg.Group("/caja"))
	handlers.NewOrderHandler(baseHandler, orderService, reconciler).RegisterRoutes(rg.Group("/pedidos"))
	handlers.NewBookingHandler(baseHandler, bookingService, reconciler).RegisterRoutes(rg.Group("/turnos"))
	handlers.NewCustomerHandler(baseHandler, customerService, reconciler).RegisterRoutes(rg.Group("/clientes"))
	handlers.NewMetricsHandler(baseHandler, metricsService).RegisterRoutes(rg.Group("/metricas"))
}
