// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"centavo/internal/domain/cashbox"
	"centavo/internal/domain/receipt"
	"centavo/internal/infrastructure/http/v1/handlers"
	"centavo/internal/infrastructure/http/v1/middleware"
	"centavo/internal/infrastructure/storage/postgres"
	"centavo/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// ReceiptService handles receipts, pricing persistence and delivery
	ReceiptService *receipt.Service

	// CashboxService handles the cash drawer ledger
	CashboxService *cashbox.Service

	// IdempotencyStore enables duplicate-request protection when non-nil
	IdempotencyStore *postgres.IdempotencyStore

	// WebhookKeyHashes maps provider code to the bcrypt hash of its
	// shared callback key
	WebhookKeyHashes map[string]string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()

	// Courier callbacks authenticate with a shared key, not a JWT.
	webhookHandler := handlers.NewWebhookHandler(baseHandler, cfg.ReceiptService)
	webhooks := router.Group("/webhooks")
	webhooks.Use(middleware.WebhookAuth(cfg.WebhookKeyHashes))
	webhookHandler.RegisterRoutes(webhooks)

	// API v1 - staff endpoints behind JWT
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	if cfg.IdempotencyStore != nil {
		api.Use(middleware.Idempotency(cfg.IdempotencyStore))
	}

	handlers.NewPricingHandler(baseHandler).RegisterRoutes(api.Group("/pricing"))
	handlers.NewReceiptHandler(baseHandler, cfg.ReceiptService).RegisterRoutes(api.Group("/receipts"))
	handlers.NewCashboxHandler(baseHandler, cfg.CashboxService).RegisterRoutes(api.Group("/cashbox"))

	return router
}
