package dto

import (
	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/usecase"
)

// CreateCashboxRequest represents a request to create a cashbox.
type CreateCashboxRequest struct {
	Name           string          `json:"name"`
	BranchID       *string         `json:"branch_id,omitempty"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	ActorID        string          `json:"actor_id"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCashboxRequest) ToUseCaseInput() usecase.CreateCashboxInput {
	return usecase.CreateCashboxInput{
		Name:           r.Name,
		BranchID:       r.BranchID,
		InitialBalance: r.InitialBalance,
		ActorID:        r.ActorID,
	}
}

// ReferenceRequest points a transaction at its source record.
type ReferenceRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// RecordEntryRequest represents a request to record income or expense.
type RecordEntryRequest struct {
	Amount      decimal.Decimal   `json:"amount"`
	Category    string            `json:"category"`
	Description string            `json:"description,omitempty"`
	ActorID     string            `json:"actor_id"`
	Reference   *ReferenceRequest `json:"reference,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordEntryRequest) ToUseCaseInput(cashboxID string) usecase.RecordEntryInput {
	input := usecase.RecordEntryInput{
		CashboxID:   cashboxID,
		Amount:      r.Amount,
		Category:    domain.Category(r.Category),
		Description: r.Description,
		ActorID:     r.ActorID,
		Metadata:    r.Metadata,
	}
	if r.Reference != nil {
		input.Reference = &domain.Reference{
			Kind: domain.ReferenceKind(r.Reference.Kind),
			ID:   r.Reference.ID,
		}
	}
	return input
}

// ReverseTransactionRequest represents a request to reverse a transaction.
type ReverseTransactionRequest struct {
	Reason  string `json:"reason"`
	ActorID string `json:"actor_id"`
}

// ToUseCaseInput converts to use case input.
func (r *ReverseTransactionRequest) ToUseCaseInput(transactionID string) usecase.ReverseTransactionInput {
	return usecase.ReverseTransactionInput{
		TransactionID: transactionID,
		Reason:        r.Reason,
		ActorID:       r.ActorID,
	}
}
