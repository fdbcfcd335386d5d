package domain

import (
	"time"
)

// AuditLog records who did what to which ledger resource. Written on a
// best-effort basis alongside every ledger mutation.
type AuditLog struct {
	ID            string
	ActorID       string
	Action        AuditAction
	CashboxID     string
	TransactionID string
	Detail        map[string]any
	Status        AuditStatus
	ErrorMessage  string
	CreatedAt     time.Time
}

// AuditAction identifies an auditable ledger operation.
type AuditAction string

const (
	AuditActionCashboxCreate      AuditAction = "cashbox.create"
	AuditActionCashboxActivate    AuditAction = "cashbox.activate"
	AuditActionCashboxDeactivate  AuditAction = "cashbox.deactivate"
	AuditActionIncomeRecord       AuditAction = "ledger.income"
	AuditActionExpenseRecord      AuditAction = "ledger.expense"
	AuditActionTransactionReverse AuditAction = "ledger.reverse"
	AuditActionReconcile          AuditAction = "ledger.reconcile"
)

// AuditStatus is the outcome of an audited operation.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	ActorID   string
	Action    string
	CashboxID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
