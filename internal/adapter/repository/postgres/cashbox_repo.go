package postgres

import (
	"context"
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

const pgErrLockNotAvailable = "55P03"

// CashboxRepository implements usecase.CashboxRepository.
type CashboxRepository struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewCashboxRepository creates a new CashboxRepository. lockTimeout
// bounds how long GetByIDForUpdate waits for the row lock.
func NewCashboxRepository(pool *pgxpool.Pool, lockTimeout time.Duration) *CashboxRepository {
	return &CashboxRepository{
		pool:        pool,
		lockTimeout: lockTimeout,
	}
}

const cashboxColumns = `id, branch_id, name, initial_balance, current_balance, is_active, created_at, updated_at`

// Create creates a new cashbox.
func (r *CashboxRepository) Create(ctx context.Context, cashbox *domain.Cashbox) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cashboxes (id, branch_id, name, initial_balance, current_balance, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		cashbox.ID,
		cashbox.BranchID,
		cashbox.Name,
		decimalToNumeric(cashbox.InitialBalance),
		decimalToNumeric(cashbox.CurrentBalance),
		cashbox.IsActive,
		timeToPgTimestamptz(cashbox.CreatedAt),
		timeToPgTimestamptz(cashbox.UpdatedAt),
	)

	return err
}

// GetByID retrieves a cashbox by ID.
func (r *CashboxRepository) GetByID(ctx context.Context, id string) (*domain.Cashbox, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cashboxColumns+` FROM cashboxes WHERE id = $1`, id)

	return scanCashbox(row)
}

// GetByIDForUpdate retrieves a cashbox by ID with a FOR UPDATE lock.
// The wait is bounded by the configured lock timeout; expiry surfaces
// as domain.ErrLockTimeout.
func (r *CashboxRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Cashbox, error) {
	pgxTx := tx.(*Tx).PgxTx()

	// SET LOCAL scopes the timeout to this transaction.
	if _, err := pgxTx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		return nil, err
	}

	row := pgxTx.QueryRow(ctx, `SELECT `+cashboxColumns+` FROM cashboxes WHERE id = $1 FOR UPDATE`, id)

	box, err := scanCashbox(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrLockNotAvailable {
			return nil, domain.ErrLockTimeout
		}

		return nil, err
	}

	return box, nil
}

// UpdateBalance updates the current balance of a cashbox.
func (r *CashboxRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `UPDATE cashboxes SET current_balance = $2, updated_at = $3 WHERE id = $1`,
		id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCashboxNotFound
	}

	return nil
}

// SetActive flips the active flag of a cashbox.
func (r *CashboxRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE cashboxes SET is_active = $2, updated_at = $3 WHERE id = $1`,
		id, active, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCashboxNotFound
	}

	return nil
}

// List lists cashboxes with pagination.
func (r *CashboxRepository) List(ctx context.Context, limit, offset int) ([]*domain.Cashbox, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cashboxColumns+` FROM cashboxes ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cashboxes []*domain.Cashbox
	for rows.Next() {
		box, err := scanCashbox(rows)
		if err != nil {
			return nil, err
		}
		cashboxes = append(cashboxes, box)
	}

	return cashboxes, rows.Err()
}

func scanCashbox(row pgx.Row) (*domain.Cashbox, error) {
	var (
		box       domain.Cashbox
		initial   pgtype.Numeric
		current   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&box.ID,
		&box.BranchID,
		&box.Name,
		&initial,
		&current,
		&box.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCashboxNotFound
		}

		return nil, err
	}

	box.InitialBalance = numericToDecimal(initial)
	box.CurrentBalance = numericToDecimal(current)
	box.CreatedAt = createdAt.Time
	box.UpdatedAt = updatedAt.Time

	return &box, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
