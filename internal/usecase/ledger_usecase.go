package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/infrastructure/metrics"
)

// LedgerUseCase is the only writer of cashbox balances and the only
// creator of transactions. Every write happens inside one database
// transaction that holds the cashbox row lock from balance re-read to
// commit.
type LedgerUseCase struct {
	txManager   TransactionManager
	cashboxRepo CashboxRepository
	txnRepo     TransactionRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	retrier     Retrier
	cache       Cache
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. auditRepo, retrier and
// cache may be nil.
func NewLedgerUseCase(
	txManager TransactionManager,
	cashboxRepo CashboxRepository,
	txnRepo TransactionRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		cashboxRepo: cashboxRepo,
		txnRepo:     txnRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		retrier:     retrier,
		cache:       cache,
	}
}

// WithMetrics attaches Prometheus collectors to the use case.
func (uc *LedgerUseCase) WithMetrics(m *metrics.Metrics) *LedgerUseCase {
	uc.metrics = m
	return uc
}

// RecordEntryInput is the input shared by RecordIncome and RecordExpense.
type RecordEntryInput struct {
	CashboxID   string
	Amount      decimal.Decimal
	Category    domain.Category
	Description string
	ActorID     string
	Reference   *domain.Reference
	Metadata    map[string]any
}

func (in *RecordEntryInput) validate() error {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if !in.Category.Valid() {
		return domain.ErrUnknownCategory
	}
	if in.Reference != nil {
		return in.Reference.Validate()
	}
	return nil
}

// RecordIncome adds money to a cashbox and appends the matching
// transaction atomically.
func (uc *LedgerUseCase) RecordIncome(ctx context.Context, input RecordEntryInput) (*domain.Transaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txn, err := uc.commitEntry(ctx, domain.TransactionTypeIncome, input, nil)
	uc.observe(txn, err)
	uc.audit(ctx, domain.AuditActionIncomeRecord, input.ActorID, input.CashboxID, txn, err)

	return txn, err
}

// RecordExpense removes money from a cashbox. Fails with
// domain.ErrInsufficientBalance before any write when the balance would
// go negative.
func (uc *LedgerUseCase) RecordExpense(ctx context.Context, input RecordEntryInput) (*domain.Transaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txn, err := uc.commitEntry(ctx, domain.TransactionTypeExpense, input, nil)
	uc.observe(txn, err)
	uc.audit(ctx, domain.AuditActionExpenseRecord, input.ActorID, input.CashboxID, txn, err)

	return txn, err
}

// ReverseTransactionInput is the input for ReverseTransaction.
type ReverseTransactionInput struct {
	TransactionID string
	Reason        string
	ActorID       string
}

// ReverseTransaction appends a counter-entry for a prior income or
// expense. The original row is never touched; a transaction can be
// reversed at most once.
func (uc *LedgerUseCase) ReverseTransaction(ctx context.Context, input ReverseTransactionInput) (*domain.Transaction, error) {
	original, err := uc.txnRepo.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	if original.IsReversal() {
		return nil, domain.ErrCannotReverseReversal
	}

	// Cheap pre-check; the partial unique index on reversed_transaction_id
	// is what actually enforces exclusivity under concurrency.
	if _, err := uc.txnRepo.GetReversalOf(ctx, original.ID); err == nil {
		return nil, domain.ErrAlreadyReversed
	} else if !errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, err
	}

	entry := RecordEntryInput{
		CashboxID:   original.CashboxID,
		Amount:      original.Amount,
		Category:    domain.CategoryReversal,
		Description: fmt.Sprintf("reversal of %s: %s", original.ID, input.Reason),
		ActorID:     input.ActorID,
		Reference:   original.Reference,
		Metadata: map[string]any{
			"original_id":       original.ID,
			"original_type":     string(original.Type),
			"original_category": string(original.Category),
			"reason":            input.Reason,
		},
	}

	txn, err := uc.commitEntry(ctx, domain.TransactionTypeReversal, entry, original)
	uc.observe(txn, err)
	if err == nil && uc.metrics != nil {
		uc.metrics.TransactionsReversed.Inc()
	}
	uc.audit(ctx, domain.AuditActionTransactionReverse, input.ActorID, original.CashboxID, txn, err)

	return txn, err
}

// commitEntry runs one atomic balance transition: lock the cashbox row,
// re-read the balance, append the transaction and update the balance in
// the same database transaction.
func (uc *LedgerUseCase) commitEntry(ctx context.Context, txnType domain.TransactionType, input RecordEntryInput, original *domain.Transaction) (*domain.Transaction, error) {
	var created *domain.Transaction

	op := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		box, err := uc.cashboxRepo.GetByIDForUpdate(ctx, tx, input.CashboxID)
		if err != nil {
			return err
		}

		newBalance, err := uc.transition(box, txnType, input.Amount, original)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		txn := &domain.Transaction{
			ID:           uc.idGen.Generate(),
			CashboxID:    box.ID,
			Type:         txnType,
			Amount:       input.Amount,
			BalanceAfter: newBalance,
			Category:     input.Category,
			Description:  input.Description,
			Reference:    input.Reference,
			CreatedBy:    input.ActorID,
			Metadata:     input.Metadata,
			CreatedAt:    now,
		}
		if original != nil {
			txn.ReversedTransactionID = &original.ID
		}

		if err := txn.Validate(); err != nil {
			return err
		}

		if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
			return err
		}

		if err := uc.cashboxRepo.UpdateBalance(ctx, tx, box.ID, newBalance, now); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		created = txn

		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	return created, nil
}

// observe records the outcome of one write in the metrics, when any
// are attached.
func (uc *LedgerUseCase) observe(txn *domain.Transaction, err error) {
	if uc.metrics == nil {
		return
	}

	if err == nil && txn != nil {
		uc.metrics.TransactionsRecorded.WithLabelValues(string(txn.Type), string(txn.Category)).Inc()
		uc.metrics.TransactionAmount.Observe(txn.Amount.InexactFloat64())
		uc.metrics.CashboxBalance.WithLabelValues(txn.CashboxID).Set(txn.BalanceAfter.InexactFloat64())
		return
	}

	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		uc.metrics.BalanceRejections.Inc()
		uc.metrics.LedgerErrors.WithLabelValues("insufficient_balance").Inc()
	case errors.Is(err, domain.ErrLockTimeout):
		uc.metrics.LockTimeouts.Inc()
		uc.metrics.LedgerErrors.WithLabelValues("lock_timeout").Inc()
	case errors.Is(err, domain.ErrInactiveCashbox):
		uc.metrics.LedgerErrors.WithLabelValues("inactive_cashbox").Inc()
	case errors.Is(err, domain.ErrCashboxNotFound), errors.Is(err, domain.ErrTransactionNotFound):
		uc.metrics.LedgerErrors.WithLabelValues("not_found").Inc()
	default:
		uc.metrics.LedgerErrors.WithLabelValues("other").Inc()
	}
}

// transition computes the new balance for one entry, enforcing the
// zero floor. For reversals the direction is the inverse of the
// original's type.
func (uc *LedgerUseCase) transition(box *domain.Cashbox, txnType domain.TransactionType, amount decimal.Decimal, original *domain.Transaction) (decimal.Decimal, error) {
	switch txnType {
	case domain.TransactionTypeIncome:
		if err := box.ValidateDeposit(amount); err != nil {
			return decimal.Zero, err
		}
		return box.ApplyDeposit(amount), nil

	case domain.TransactionTypeExpense:
		if err := box.ValidateWithdraw(amount); err != nil {
			return decimal.Zero, err
		}
		return box.ApplyWithdraw(amount), nil

	case domain.TransactionTypeReversal:
		if original == nil {
			return decimal.Zero, domain.ErrTransactionNotFound
		}
		if original.Type == domain.TransactionTypeIncome {
			// Reversing income removes money; the floor still holds.
			if err := box.ValidateWithdraw(amount); err != nil {
				return decimal.Zero, err
			}
			return box.ApplyWithdraw(amount), nil
		}
		if err := box.ValidateDeposit(amount); err != nil {
			return decimal.Zero, err
		}
		return box.ApplyDeposit(amount), nil
	}

	return decimal.Zero, domain.ErrUnknownTransactionType
}

// ReconciliationResult reports a reconciliation run.
type ReconciliationResult struct {
	CashboxID       string
	RecordedBalance decimal.Decimal
	ReplayedBalance decimal.Decimal
	Difference      decimal.Decimal
	Corrected       bool
	CheckedAt       time.Time
}

// Reconcile replays the entire transaction history under the cashbox
// lock and corrects the stored balance when it has drifted. Idempotent.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, cashboxID string) (*ReconciliationResult, error) {
	var result *ReconciliationResult

	op := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		box, err := uc.cashboxRepo.GetByIDForUpdate(ctx, tx, cashboxID)
		if err != nil {
			return err
		}

		sum, err := uc.txnRepo.SumHistoryTx(ctx, tx, cashboxID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		replayed := box.InitialBalance.Add(sum)

		result = &ReconciliationResult{
			CashboxID:       cashboxID,
			RecordedBalance: box.CurrentBalance,
			ReplayedBalance: replayed,
			Difference:      box.CurrentBalance.Sub(replayed),
			CheckedAt:       now,
		}

		if replayed.Equal(box.CurrentBalance) {
			return tx.Commit(ctx)
		}

		if err := uc.cashboxRepo.UpdateBalance(ctx, tx, cashboxID, replayed, now); err != nil {
			return err
		}

		result.Corrected = true

		return tx.Commit(ctx)
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
		if result.Corrected {
			uc.metrics.ReconciliationCorrections.Inc()
		}
	}

	if result.Corrected {
		log.Warn().
			Str("cashbox_id", cashboxID).
			Str("recorded", result.RecordedBalance.String()).
			Str("replayed", result.ReplayedBalance.String()).
			Msg("cashbox balance drift corrected")
	}

	uc.audit(ctx, domain.AuditActionReconcile, "", cashboxID, nil, nil)

	return result, nil
}

// BalanceAtDate computes the balance as of an instant by replaying the
// history up to and including it. Pure read, no lock.
func (uc *LedgerUseCase) BalanceAtDate(ctx context.Context, cashboxID string, at time.Time) (decimal.Decimal, error) {
	box, err := uc.cashboxRepo.GetByID(ctx, cashboxID)
	if err != nil {
		return decimal.Zero, err
	}

	sum, err := uc.txnRepo.SumHistory(ctx, cashboxID, at)
	if err != nil {
		return decimal.Zero, err
	}

	return box.InitialBalance.Add(sum), nil
}

// DailySummary is the derived end-of-day report for one cashbox.
type DailySummary struct {
	CashboxID        string          `json:"cashbox_id"`
	Date             string          `json:"date"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	Net              decimal.Decimal `json:"net"`
	ClosingBalance   decimal.Decimal `json:"closing_balance"`
	TransactionCount int64           `json:"transaction_count"`
	ReversalCount    int64           `json:"reversal_count"`
}

// GetDailySummary derives the summary for one UTC day. Closed days are
// immutable, so they are served from cache when one is configured.
func (uc *LedgerUseCase) GetDailySummary(ctx context.Context, cashboxID string, date time.Time) (*DailySummary, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	closed := dayEnd.Before(time.Now().UTC())
	cacheKey := fmt.Sprintf("summary:%s:%s", cashboxID, dayStart.Format("2006-01-02"))

	if closed && uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, cacheKey); err == nil {
			var cached DailySummary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	box, err := uc.cashboxRepo.GetByID(ctx, cashboxID)
	if err != nil {
		return nil, err
	}

	// Opening is the balance just before the day starts; postgres
	// timestamps are microsecond precision.
	openingSum, err := uc.txnRepo.SumHistory(ctx, cashboxID, dayStart.Add(-time.Microsecond))
	if err != nil {
		return nil, err
	}

	closingSum, err := uc.txnRepo.SumHistory(ctx, cashboxID, dayEnd.Add(-time.Microsecond))
	if err != nil {
		return nil, err
	}

	totals, err := uc.txnRepo.RangeTotals(ctx, cashboxID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	opening := box.InitialBalance.Add(openingSum)
	closing := box.InitialBalance.Add(closingSum)

	summary := &DailySummary{
		CashboxID:        cashboxID,
		Date:             dayStart.Format("2006-01-02"),
		OpeningBalance:   opening,
		TotalIncome:      totals.Income,
		TotalExpense:     totals.Expense,
		Net:              closing.Sub(opening),
		ClosingBalance:   closing,
		TransactionCount: totals.TransactionCount,
		ReversalCount:    totals.ReversalCount,
	}

	if closed && uc.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, string(raw), SummaryCacheTTL); err != nil {
				log.Debug().Err(err).Str("key", cacheKey).Msg("summary cache write failed")
			}
		}
	}

	return summary, nil
}

// audit writes a best-effort audit row; failures are logged, never fatal.
func (uc *LedgerUseCase) audit(ctx context.Context, action domain.AuditAction, actorID, cashboxID string, txn *domain.Transaction, opErr error) {
	if uc.auditRepo == nil {
		return
	}

	entry := &domain.AuditLog{
		ActorID:   actorID,
		Action:    action,
		CashboxID: cashboxID,
		Status:    domain.AuditStatusSuccess,
		CreatedAt: time.Now().UTC(),
	}

	if txn != nil {
		entry.TransactionID = txn.ID
		entry.Detail = map[string]any{
			"amount":        txn.Amount.String(),
			"balance_after": txn.BalanceAfter.String(),
			"category":      string(txn.Category),
		}
	}

	if opErr != nil {
		entry.Status = domain.AuditStatusFailure
		entry.ErrorMessage = opErr.Error()
	}

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", string(action)).Msg("audit log write failed")
		return
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(string(action), string(entry.Status)).Inc()
	}
}
