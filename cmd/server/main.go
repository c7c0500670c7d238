// Package main is the entry point for the centavo API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"centavo/internal/config"
	"centavo/internal/domain/auth"
	"centavo/internal/domain/cashbox"
	"centavo/internal/domain/delivery"
	"centavo/internal/domain/receipt"
	"centavo/internal/infrastructure/courier"
	v1 "centavo/internal/infrastructure/http/v1"
	"centavo/internal/infrastructure/numerator"
	"centavo/internal/infrastructure/storage/postgres"
	"centavo/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting centavo server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Couriers ---
	registry := delivery.NewRegistry()
	registry.Register(delivery.ProviderOptimus, delivery.NewOptimusAdapter(
		courier.NewOptimusClient(courier.OptimusConfig{
			BaseURL: cfg.Optimus.BaseURL,
			APIKey:  cfg.Optimus.APIKey,
			Timeout: cfg.Optimus.Timeout,
		})))
	registry.Register(delivery.ProviderSkynet, delivery.NewSkynetAdapter(
		courier.NewSkynetClient(courier.SkynetConfig{
			BaseURL:  cfg.Skynet.BaseURL,
			ClientID: cfg.Skynet.ClientID,
			Secret:   cfg.Skynet.Secret,
			Timeout:  cfg.Skynet.Timeout,
		})))

	// --- Services ---
	numeratorService := numerator.New(txManager)

	cashboxService := cashbox.NewService(postgres.NewCashboxRepo(txManager), txManager, auditService)
	receiptService := receipt.NewService(
		postgres.NewReceiptRepo(txManager),
		registry,
		numeratorService,
		txManager,
		cashboxService,
		auditService,
	)

	// --- JWT ---
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: cfg.JWT.TTL,
	})

	// --- Idempotency ---
	var idempotencyStore *postgres.IdempotencyStore
	if cfg.Idempotency.Enabled {
		idempotencyStore = postgres.NewIdempotencyStore(txManager, cfg.Idempotency.TTL)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool,
		Logger:           log,
		JWTValidator:     jwtService,
		ReceiptService:   receiptService,
		CashboxService:   cashboxService,
		IdempotencyStore: idempotencyStore,
		WebhookKeyHashes: map[string]string{
			string(delivery.ProviderOptimus): cfg.Optimus.WebhookKeyHash,
			string(delivery.ProviderSkynet):  cfg.Skynet.WebhookKeyHash,
		},
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
