package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/atlaserp/cashledger/internal/adapter/http"
	"github.com/atlaserp/cashledger/internal/adapter/http/handler"
	postgresRepo "github.com/atlaserp/cashledger/internal/adapter/repository/postgres"
	redisRepo "github.com/atlaserp/cashledger/internal/adapter/repository/redis"
	"github.com/atlaserp/cashledger/internal/infrastructure/config"
	"github.com/atlaserp/cashledger/internal/infrastructure/logger"
	"github.com/atlaserp/cashledger/internal/infrastructure/metrics"
	"github.com/atlaserp/cashledger/internal/infrastructure/postgres"
	"github.com/atlaserp/cashledger/internal/infrastructure/redis"
	"github.com/atlaserp/cashledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	zerolog.DefaultContextLogger = &log.Logger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis. The service degrades to uncached, non-idempotent
	// operation when Redis is unavailable.
	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
	)

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching and idempotency disabled")
	} else {
		defer redisClient.Close()
		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		log.Info().Msg("connected to redis")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	cashboxRepo := postgresRepo.NewCashboxRepository(pool, cfg.LockTimeout)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	m := metrics.New()
	cashboxUC := usecase.NewCashboxUseCase(cashboxRepo, auditRepo, idGen).WithMetrics(m)
	ledgerUC := usecase.NewLedgerUseCase(txManager, cashboxRepo, transactionRepo, auditRepo, idGen, retrier, cache).WithMetrics(m)
	transactionUC := usecase.NewTransactionUseCase(transactionRepo, usecase.NewReferenceResolver())

	// Initialize handlers
	cashboxHandler := handler.NewCashboxHandler(cashboxUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	transactionHandler := handler.NewTransactionHandler(transactionUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		CashboxHandler:     cashboxHandler,
		LedgerHandler:      ledgerHandler,
		TransactionHandler: transactionHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Logger:             log.Logger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
