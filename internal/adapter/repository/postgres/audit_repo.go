package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlaserp/cashledger/internal/domain"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts a new audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	var detail []byte
	if log.Detail != nil {
		var err error
		detail, err = json.Marshal(log.Detail)
		if err != nil {
			return err
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, actor_id, action, cashbox_id, transaction_id, detail, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		log.ID,
		log.ActorID,
		string(log.Action),
		log.CashboxID,
		log.TransactionID,
		detail,
		string(log.Status),
		log.ErrorMessage,
		log.CreatedAt,
	)

	return err
}

// List retrieves audit logs matching the filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, cashbox_id, transaction_id, detail, status, error_message, created_at
		FROM audit_logs
		WHERE 1=1`
	args := []any{}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.ActorID != "" {
		addArg(` AND actor_id = $%d`, filter.ActorID)
	}
	if filter.Action != "" {
		addArg(` AND action = $%d`, filter.Action)
	}
	if filter.CashboxID != "" {
		addArg(` AND cashbox_id = $%d`, filter.CashboxID)
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

	var logs []*domain.AuditLog
	for rows.Next() {
		var (
			log    domain.AuditLog
			detail []byte
		)

		err := rows.Scan(
			&log.ID,
			&log.ActorID,
			&log.Action,
			&log.CashboxID,
			&log.TransactionID,
			&detail,
			&log.Status,
			&log.ErrorMessage,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if detail != nil {
			_ = json.Unmarshal(detail, &log.Detail)
		}

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
