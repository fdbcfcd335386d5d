package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// TransactionRepository implements usecase.TransactionRepository.
// Inserts only; the transactions table rejects update and delete at the
// database level.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, cashbox_id, type, amount, balance_after, category, description,
	reference_kind, reference_id, reversed_transaction_id, created_by, metadata, created_at`

// signedAmount assigns each row its replay sign: income adds, expense
// subtracts, and a reversal contributes the inverse of the row it
// reverses.
const signedAmount = `
	CASE t.type
		WHEN 'income' THEN t.amount
		WHEN 'expense' THEN -t.amount
		WHEN 'reversal' THEN CASE orig.type WHEN 'income' THEN -t.amount ELSE t.amount END
	END`

// Create appends a transaction inside tx. A second reversal of the same
// original violates the partial unique index on reversed_transaction_id
// and surfaces as domain.ErrAlreadyReversed.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	var metadata []byte
	if txn.Metadata != nil {
		var err error
		metadata, err = json.Marshal(txn.Metadata)
		if err != nil {
			return err
		}
	}

	var refKind, refID *string
	if txn.Reference != nil {
		kind := string(txn.Reference.Kind)
		refKind = &kind
		refID = &txn.Reference.ID
	}

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		txn.ID,
		txn.CashboxID,
		string(txn.Type),
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.BalanceAfter),
		string(txn.Category),
		txn.Description,
		refKind,
		refID,
		txn.ReversedTransactionID,
		txn.CreatedBy,
		metadata,
		timeToPgTimestamptz(txn.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == "ux_transactions_reversed" {
			return domain.ErrAlreadyReversed
		}

		return err
	}

	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)

	return scanTransaction(row)
}

// GetReversalOf returns the reversal entry pointing at transactionID.
func (r *TransactionRepository) GetReversalOf(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE reversed_transaction_id = $1`, transactionID)

	return scanTransaction(row)
}

// List lists transactions matching the filter, newest first.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []any{}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.CashboxID != "" {
		addArg(` AND cashbox_id = $%d`, filter.CashboxID)
	}
	if filter.Type != nil {
		addArg(` AND type = $%d`, string(*filter.Type))
	}
	if filter.Category != nil {
		addArg(` AND category = $%d`, string(*filter.Category))
	}
	if filter.ReferenceKind != nil {
		addArg(` AND reference_kind = $%d`, string(*filter.ReferenceKind))
	}
	if filter.ReferenceID != nil {
		addArg(` AND reference_id = $%d`, *filter.ReferenceID)
	}
	if filter.From != nil {
		addArg(` AND created_at >= $%d`, *filter.From)
	}
	if filter.To != nil {
		addArg(` AND created_at < $%d`, *filter.To)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		addArg(` LIMIT $%d`, filter.Limit)
	}
	if filter.Offset > 0 {
		addArg(` OFFSET $%d`, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// SumHistory replays the signed history up to and including until.
func (r *TransactionRepository) SumHistory(ctx context.Context, cashboxID string, until time.Time) (decimal.Decimal, error) {
	return r.sumHistory(ctx, r.pool, cashboxID, &until)
}

// SumHistoryTx replays the full signed history inside tx.
func (r *TransactionRepository) SumHistoryTx(ctx context.Context, tx usecase.Transaction, cashboxID string) (decimal.Decimal, error) {
	return r.sumHistory(ctx, tx.(*Tx).PgxTx(), cashboxID, nil)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *TransactionRepository) sumHistory(ctx context.Context, q queryer, cashboxID string, until *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(` + signedAmount + `), 0)
		FROM transactions t
		LEFT JOIN transactions orig ON orig.id = t.reversed_transaction_id
		WHERE t.cashbox_id = $1`
	args := []any{cashboxID}

	if until != nil {
		query += ` AND t.created_at <= $2`
		args = append(args, *until)
	}

	var sum pgtype.Numeric
	if err := q.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// RangeTotals aggregates [from, to) for one cashbox.
func (r *TransactionRepository) RangeTotals(ctx context.Context, cashboxID string, from, to time.Time) (*usecase.RangeTotals, error) {
	var (
		income   pgtype.Numeric
		expense  pgtype.Numeric
		totals   usecase.RangeTotals
		reversal int64
		count    int64
	)

	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE type = 'reversal')
		FROM transactions
		WHERE cashbox_id = $1 AND created_at >= $2 AND created_at < $3`,
		cashboxID, from, to,
	).Scan(&income, &expense, &count, &reversal)
	if err != nil {
		return nil, err
	}

	totals.Income = numericToDecimal(income)
	totals.Expense = numericToDecimal(expense)
	totals.TransactionCount = count
	totals.ReversalCount = reversal

	return &totals, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn       domain.Transaction
		txnType   string
		category  string
		amount    pgtype.Numeric
		after     pgtype.Numeric
		refKind   *string
		refID     *string
		metadata  []byte
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.CashboxID,
		&txnType,
		&amount,
		&after,
		&category,
		&txn.Description,
		&refKind,
		&refID,
		&txn.ReversedTransactionID,
		&txn.CreatedBy,
		&metadata,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	txn.Type = domain.TransactionType(txnType)
	txn.Category = domain.Category(category)
	txn.Amount = numericToDecimal(amount)
	txn.BalanceAfter = numericToDecimal(after)
	txn.CreatedAt = createdAt.Time

	if refKind != nil && refID != nil {
		txn.Reference = &domain.Reference{Kind: domain.ReferenceKind(*refKind), ID: *refID}
	}

	if metadata != nil {
		_ = json.Unmarshal(metadata, &txn.Metadata)
	}

	return &txn, nil
}
