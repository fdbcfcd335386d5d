package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/usecase"
)

// CashboxResponse represents a cashbox in API responses.
type CashboxResponse struct {
	ID             string          `json:"id"`
	BranchID       *string         `json:"branch_id,omitempty"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CashboxFromDomain converts a domain cashbox to a response.
func CashboxFromDomain(c *domain.Cashbox) *CashboxResponse {
	return &CashboxResponse{
		ID:             c.ID,
		BranchID:       c.BranchID,
		Name:           c.Name,
		InitialBalance: c.InitialBalance,
		CurrentBalance: c.CurrentBalance,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// CashboxesFromDomain converts domain cashboxes to responses.
func CashboxesFromDomain(cashboxes []*domain.Cashbox) []*CashboxResponse {
	result := make([]*CashboxResponse, len(cashboxes))
	for i, c := range cashboxes {
		result[i] = CashboxFromDomain(c)
	}
	return result
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                    string            `json:"id"`
	CashboxID             string            `json:"cashbox_id"`
	Type                  string            `json:"type"`
	Amount                decimal.Decimal   `json:"amount"`
	BalanceAfter          decimal.Decimal   `json:"balance_after"`
	Category              string            `json:"category"`
	Description           string            `json:"description,omitempty"`
	Reference             *ReferenceRequest `json:"reference,omitempty"`
	ReversedTransactionID *string           `json:"reversed_transaction_id,omitempty"`
	CreatedBy             string            `json:"created_by,omitempty"`
	Metadata              map[string]any    `json:"metadata,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:                    t.ID,
		CashboxID:             t.CashboxID,
		Type:                  string(t.Type),
		Amount:                t.Amount,
		BalanceAfter:          t.BalanceAfter,
		Category:              string(t.Category),
		Description:           t.Description,
		ReversedTransactionID: t.ReversedTransactionID,
		CreatedBy:             t.CreatedBy,
		Metadata:              t.Metadata,
		CreatedAt:             t.CreatedAt,
	}
	if t.Reference != nil {
		resp.Reference = &ReferenceRequest{
			Kind: string(t.Reference.Kind),
			ID:   t.Reference.ID,
		}
	}
	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// BalanceResponse reports a balance at an instant.
type BalanceResponse struct {
	CashboxID string          `json:"cashbox_id"`
	At        time.Time       `json:"at"`
	Balance   decimal.Decimal `json:"balance"`
}

// ReconciliationResponse reports a reconciliation run.
type ReconciliationResponse struct {
	CashboxID       string          `json:"cashbox_id"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	ReplayedBalance decimal.Decimal `json:"replayed_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Corrected       bool            `json:"corrected"`
	CheckedAt       time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		CashboxID:       r.CashboxID,
		RecordedBalance: r.RecordedBalance,
		ReplayedBalance: r.ReplayedBalance,
		Difference:      r.Difference,
		Corrected:       r.Corrected,
		CheckedAt:       r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
