package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType encodes the direction of a ledger entry. Direction is
// never encoded in the sign of Amount.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeReversal TransactionType = "reversal"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeReversal:
		return true
	}
	return false
}

// Category tags the business reason for a transaction. The ledger stores
// and reports it but never interprets its semantics.
type Category string

const (
	CategoryPayment           Category = "payment"
	CategoryCustodyDeposit    Category = "custody_deposit"
	CategoryCustodyReturn     Category = "custody_return"
	CategoryCustodyForfeiture Category = "custody_forfeiture"
	CategoryExpense           Category = "expense"
	CategoryReceivablePayment Category = "receivable_payment"
	CategorySalaryExpense     Category = "salary_expense"
	CategoryReversal          Category = "reversal"
	CategoryInitialBalance    Category = "initial_balance"
	CategoryAdjustment        Category = "adjustment"
)

// Categories lists every valid category tag.
func Categories() []Category {
	return []Category{
		CategoryPayment,
		CategoryCustodyDeposit,
		CategoryCustodyReturn,
		CategoryCustodyForfeiture,
		CategoryExpense,
		CategoryReceivablePayment,
		CategorySalaryExpense,
		CategoryReversal,
		CategoryInitialBalance,
		CategoryAdjustment,
	}
}

// Valid reports whether c is part of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryPayment, CategoryCustodyDeposit, CategoryCustodyReturn,
		CategoryCustodyForfeiture, CategoryExpense, CategoryReceivablePayment,
		CategorySalaryExpense, CategoryReversal, CategoryInitialBalance,
		CategoryAdjustment:
		return true
	}
	return false
}

// Transaction is one immutable entry in a cashbox's ledger. Rows are
// created exactly once by the ledger use case and never change.
type Transaction struct {
	ID                    string
	CashboxID             string
	Type                  TransactionType
	Amount                decimal.Decimal
	BalanceAfter          decimal.Decimal
	Category              Category
	Description           string
	Reference             *Reference
	ReversedTransactionID *string
	CreatedBy             string
	Metadata              map[string]any
	CreatedAt             time.Time
}

// IsReversal reports whether the transaction itself is a reversal entry.
func (t *Transaction) IsReversal() bool {
	return t.Type == TransactionTypeReversal
}

// Validate checks the invariants a transaction must satisfy before it
// is persisted.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrUnknownTransactionType
	}
	if !t.Category.Valid() {
		return ErrUnknownCategory
	}
	if t.Reference != nil {
		if err := t.Reference.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	CashboxID     string
	Type          *TransactionType
	Category      *Category
	ReferenceKind *ReferenceKind
	ReferenceID   *string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}
