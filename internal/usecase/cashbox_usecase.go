package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/infrastructure/metrics"
)

// CashboxUseCase handles cashbox lifecycle. Balance mutation lives in
// LedgerUseCase only.
type CashboxUseCase struct {
	cashboxRepo CashboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewCashboxUseCase creates a new CashboxUseCase. auditRepo may be nil.
func NewCashboxUseCase(cashboxRepo CashboxRepository, auditRepo AuditRepository, idGen IDGenerator) *CashboxUseCase {
	return &CashboxUseCase{
		cashboxRepo: cashboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// WithMetrics attaches Prometheus collectors to the use case.
func (uc *CashboxUseCase) WithMetrics(m *metrics.Metrics) *CashboxUseCase {
	uc.metrics = m
	return uc
}

// CreateCashboxInput represents input for creating a cashbox.
type CreateCashboxInput struct {
	Name           string
	BranchID       *string
	InitialBalance decimal.Decimal
	ActorID        string
}

// CreateCashbox provisions a register. The initial balance is set once
// and the current balance starts equal to it.
func (uc *CashboxUseCase) CreateCashbox(ctx context.Context, input CreateCashboxInput) (*domain.Cashbox, error) {
	if input.InitialBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()

	box := &domain.Cashbox{
		ID:             uc.idGen.Generate(),
		BranchID:       input.BranchID,
		Name:           input.Name,
		InitialBalance: input.InitialBalance,
		CurrentBalance: input.InitialBalance,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.cashboxRepo.Create(ctx, box); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CashboxesCreated.Inc()
		uc.metrics.CashboxOperations.WithLabelValues("create").Inc()
		uc.metrics.CashboxBalance.WithLabelValues(box.ID).Set(box.CurrentBalance.InexactFloat64())
	}

	uc.audit(ctx, domain.AuditActionCashboxCreate, input.ActorID, box.ID)

	return box, nil
}

// GetCashbox retrieves a cashbox by ID.
func (uc *CashboxUseCase) GetCashbox(ctx context.Context, id string) (*domain.Cashbox, error) {
	return uc.cashboxRepo.GetByID(ctx, id)
}

// ListCashboxesInput represents input for listing cashboxes.
type ListCashboxesInput struct {
	Limit  int
	Offset int
}

// ListCashboxes lists cashboxes with pagination.
func (uc *CashboxUseCase) ListCashboxes(ctx context.Context, input ListCashboxesInput) ([]*domain.Cashbox, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultListLimit
	}
	if input.Limit > MaxListLimit {
		input.Limit = MaxListLimit
	}
	return uc.cashboxRepo.List(ctx, input.Limit, input.Offset)
}

// Activate re-enables writes to a cashbox.
func (uc *CashboxUseCase) Activate(ctx context.Context, id, actorID string) error {
	if err := uc.setActive(ctx, id, true); err != nil {
		return err
	}
	if uc.metrics != nil {
		uc.metrics.CashboxOperations.WithLabelValues("activate").Inc()
	}
	uc.audit(ctx, domain.AuditActionCashboxActivate, actorID, id)
	return nil
}

// Deactivate suspends further writes. Past transactions stay valid.
func (uc *CashboxUseCase) Deactivate(ctx context.Context, id, actorID string) error {
	if err := uc.setActive(ctx, id, false); err != nil {
		return err
	}
	if uc.metrics != nil {
		uc.metrics.CashboxOperations.WithLabelValues("deactivate").Inc()
	}
	uc.audit(ctx, domain.AuditActionCashboxDeactivate, actorID, id)
	return nil
}

func (uc *CashboxUseCase) setActive(ctx context.Context, id string, active bool) error {
	if _, err := uc.cashboxRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.cashboxRepo.SetActive(ctx, id, active, time.Now().UTC())
}

func (uc *CashboxUseCase) audit(ctx context.Context, action domain.AuditAction, actorID, cashboxID string) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ActorID:   actorID,
		Action:    action,
		CashboxID: cashboxID,
		Status:    domain.AuditStatusSuccess,
		CreatedAt: time.Now().UTC(),
	})
}
