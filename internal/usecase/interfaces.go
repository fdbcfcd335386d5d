package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/domain"
)

// CashboxRepository defines data access for cashboxes.
type CashboxRepository interface {
	Create(ctx context.Context, cashbox *domain.Cashbox) error
	GetByID(ctx context.Context, id string) (*domain.Cashbox, error)
	// GetByIDForUpdate takes the per-cashbox row lock. The lock is bounded
	// by the configured lock_timeout; expiry surfaces as domain.ErrLockTimeout.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Cashbox, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Cashbox, error)
}

// TransactionRepository defines data access for ledger transactions.
// There is deliberately no update or delete operation: the entity is
// append-only and the storage layer rejects out-of-band mutation with
// domain.ErrTransactionImmutable.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	// GetReversalOf returns the reversal entry pointing at transactionID,
	// or domain.ErrTransactionNotFound when none exists.
	GetReversalOf(ctx context.Context, transactionID string) (*domain.Transaction, error)
	// SumHistory replays the signed transaction history up to and including
	// the until instant. A reversal contributes the inverse sign of the
	// transaction it reverses. Pure read, never locks.
	SumHistory(ctx context.Context, cashboxID string, until time.Time) (decimal.Decimal, error)
	// SumHistoryTx replays the full history inside tx, for reconciliation
	// under the same row lock as writes.
	SumHistoryTx(ctx context.Context, tx Transaction, cashboxID string) (decimal.Decimal, error)
	// RangeTotals aggregates [from, to) for daily summaries.
	RangeTotals(ctx context.Context, cashboxID string, from, to time.Time) (*RangeTotals, error)
}

// RangeTotals holds per-period aggregates over a cashbox's transactions.
type RangeTotals struct {
	Income           decimal.Decimal
	Expense          decimal.Decimal
	TransactionCount int64
	ReversalCount    int64
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient storage failures
// (deadlocks, serialization failures). Lock timeouts are not retried
// here; they surface to the caller as domain.ErrLockTimeout.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
