package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Input errors (rejected before any lock is taken)
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrUnknownCategory        = errors.New("unknown category")
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrUnknownReferenceKind   = errors.New("unknown reference kind")
	ErrInvalidReference       = errors.New("reference id must not be empty")

	// State errors (rejected under the lock, no partial write)
	ErrInactiveCashbox       = errors.New("cashbox is not active")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrAlreadyReversed       = errors.New("transaction already reversed")
	ErrCannotReverseReversal = errors.New("cannot reverse a reversal transaction")

	// Integrity violations (attempt to falsify the audit trail)
	ErrTransactionImmutable = errors.New("transactions are immutable")

	ErrCashboxNotFound     = errors.New("cashbox not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Infrastructure errors (retryable by the caller)
	ErrLockTimeout = errors.New("could not acquire cashbox lock within timeout")
)

// InsufficientBalanceError carries the available-vs-required detail a
// caller needs to present the failure. It matches ErrInsufficientBalance
// under errors.Is.
type InsufficientBalanceError struct {
	CashboxID string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in cashbox %s: available %s, required %s",
		e.CashboxID, e.Available.String(), e.Required.String())
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
