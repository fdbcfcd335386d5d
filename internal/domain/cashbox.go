package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cashbox represents a single cash register's balance aggregate.
// CurrentBalance is written only by the ledger use case.
type Cashbox struct {
	ID             string
	BranchID       *string
	Name           string
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDeposit checks if the cashbox can accept amount.
func (c *Cashbox) ValidateDeposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !c.IsActive {
		return ErrInactiveCashbox
	}
	return nil
}

// ValidateWithdraw checks if amount can leave the cashbox without
// driving the balance below zero.
func (c *Cashbox) ValidateWithdraw(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !c.IsActive {
		return ErrInactiveCashbox
	}
	if c.CurrentBalance.LessThan(amount) {
		return &InsufficientBalanceError{
			CashboxID: c.ID,
			Available: c.CurrentBalance,
			Required:  amount,
		}
	}
	return nil
}

// ApplyDeposit returns the balance after adding amount.
func (c *Cashbox) ApplyDeposit(amount decimal.Decimal) decimal.Decimal {
	return c.CurrentBalance.Add(amount)
}

// ApplyWithdraw returns the balance after removing amount.
func (c *Cashbox) ApplyWithdraw(amount decimal.Decimal) decimal.Decimal {
	return c.CurrentBalance.Sub(amount)
}
