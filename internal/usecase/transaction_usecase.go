package usecase

import (
	"context"
	"errors"

	"github.com/atlaserp/cashledger/internal/domain"
)

// TransactionUseCase exposes the read-only transaction query surface.
type TransactionUseCase struct {
	txnRepo  TransactionRepository
	resolver *ReferenceResolver
}

// NewTransactionUseCase creates a new TransactionUseCase. resolver may
// be nil when no collaborator finders are registered.
func NewTransactionUseCase(txnRepo TransactionRepository, resolver *ReferenceResolver) *TransactionUseCase {
	return &TransactionUseCase{
		txnRepo:  txnRepo,
		resolver: resolver,
	}
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// ListTransactions lists transactions matching the filter.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	return uc.txnRepo.List(ctx, filter)
}

// IsReversed reports whether a reversal entry already exists for the
// given transaction.
func (uc *TransactionUseCase) IsReversed(ctx context.Context, id string) (bool, error) {
	_, err := uc.txnRepo.GetReversalOf(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return false, nil
	}
	return false, err
}

// ResolveSource looks up the collaborator record a transaction's
// reference points at, using the registered finder for its kind.
func (uc *TransactionUseCase) ResolveSource(ctx context.Context, transactionID string) (any, error) {
	txn, err := uc.txnRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.Reference == nil {
		return nil, domain.ErrInvalidReference
	}

	if uc.resolver == nil {
		return nil, ErrNoFinderRegistered
	}

	return uc.resolver.Resolve(ctx, txn.Reference)
}
