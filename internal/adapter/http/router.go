package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rs/zerolog"

	"github.com/atlaserp/cashledger/internal/adapter/http/handler"
	"github.com/atlaserp/cashledger/internal/adapter/http/middleware"
	"github.com/atlaserp/cashledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	CashboxHandler     *handler.CashboxHandler
	LedgerHandler      *handler.LedgerHandler
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and telemetry endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Cashboxes
		r.Route("/cashboxes", func(r chi.Router) {
			r.Post("/", cfg.CashboxHandler.Create)
			r.Get("/", cfg.CashboxHandler.List)
			r.Get("/{id}", cfg.CashboxHandler.Get)
			r.Post("/{id}/activate", cfg.CashboxHandler.Activate)
			r.Post("/{id}/deactivate", cfg.CashboxHandler.Deactivate)

			r.Post("/{id}/income", cfg.LedgerHandler.RecordIncome)
			r.Post("/{id}/expense", cfg.LedgerHandler.RecordExpense)
			r.Post("/{id}/reconcile", cfg.LedgerHandler.Reconcile)
			r.Get("/{id}/summary", cfg.LedgerHandler.DailySummary)
			r.Get("/{id}/balance", cfg.LedgerHandler.BalanceAt)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByCashbox)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Post("/{id}/reverse", cfg.LedgerHandler.Reverse)
			r.Get("/{id}/source", cfg.TransactionHandler.ResolveSource)
		})
	})

	return r
}
