package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/usecase"
)

// MockCashboxRepository is a map-backed mock of CashboxRepository.
type MockCashboxRepository struct {
	mu        sync.RWMutex
	cashboxes map[string]*domain.Cashbox

	CreateFunc           func(ctx context.Context, cashbox *domain.Cashbox) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Cashbox, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Cashbox, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

func NewMockCashboxRepository() *MockCashboxRepository {
	return &MockCashboxRepository{
		cashboxes: make(map[string]*domain.Cashbox),
	}
}

// Seed stores a cashbox directly, bypassing Create hooks.
func (m *MockCashboxRepository) Seed(box *domain.Cashbox) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *box
	m.cashboxes[box.ID] = &copied
}

func (m *MockCashboxRepository) Create(ctx context.Context, cashbox *domain.Cashbox) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, cashbox)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *cashbox
	m.cashboxes[cashbox.ID] = &copied
	return nil
}

func (m *MockCashboxRepository) GetByID(ctx context.Context, id string) (*domain.Cashbox, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if box, ok := m.cashboxes[id]; ok {
		copied := *box
		return &copied, nil
	}
	return nil, domain.ErrCashboxNotFound
}

func (m *MockCashboxRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Cashbox, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockCashboxRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	box, ok := m.cashboxes[id]
	if !ok {
		return domain.ErrCashboxNotFound
	}
	box.CurrentBalance = balance
	box.UpdatedAt = updatedAt
	return nil
}

func (m *MockCashboxRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	box, ok := m.cashboxes[id]
	if !ok {
		return domain.ErrCashboxNotFound
	}
	box.IsActive = active
	box.UpdatedAt = updatedAt
	return nil
}

func (m *MockCashboxRepository) List(ctx context.Context, limit, offset int) ([]*domain.Cashbox, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Cashbox, 0, len(m.cashboxes))
	for _, box := range m.cashboxes {
		copied := *box
		out = append(out, &copied)
	}
	return out, nil
}

// MockTransactionRepository is an append-only, in-memory mock of
// TransactionRepository. SumHistory replays signed history the same way
// the SQL does, so invariant tests hold against it.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	rows []*domain.Transaction

	CreateFunc func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.ReversedTransactionID != nil {
		for _, row := range m.rows {
			if row.ReversedTransactionID != nil && *row.ReversedTransactionID == *txn.ReversedTransactionID {
				return domain.ErrAlreadyReversed
			}
		}
	}
	copied := *txn
	m.rows = append(m.rows, &copied)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetReversalOf(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.rows {
		if row.ReversedTransactionID != nil && *row.ReversedTransactionID == transactionID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, row := range m.rows {
		if filter.CashboxID != "" && row.CashboxID != filter.CashboxID {
			continue
		}
		if filter.Type != nil && row.Type != *filter.Type {
			continue
		}
		if filter.Category != nil && row.Category != *filter.Category {
			continue
		}
		if filter.ReferenceKind != nil {
			if row.Reference == nil || row.Reference.Kind != *filter.ReferenceKind {
				continue
			}
		}
		if filter.ReferenceID != nil {
			if row.Reference == nil || row.Reference.ID != *filter.ReferenceID {
				continue
			}
		}
		if filter.From != nil && row.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !row.CreatedAt.Before(*filter.To) {
			continue
		}
		copied := *row
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockTransactionRepository) SumHistory(ctx context.Context, cashboxID string, until time.Time) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.replay(cashboxID, &until), nil
}

func (m *MockTransactionRepository) SumHistoryTx(ctx context.Context, tx usecase.Transaction, cashboxID string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.replay(cashboxID, nil), nil
}

func (m *MockTransactionRepository) replay(cashboxID string, until *time.Time) decimal.Decimal {
	byID := make(map[string]*domain.Transaction, len(m.rows))
	for _, row := range m.rows {
		byID[row.ID] = row
	}

	sum := decimal.Zero
	for _, row := range m.rows {
		if row.CashboxID != cashboxID {
			continue
		}
		if until != nil && row.CreatedAt.After(*until) {
			continue
		}
		switch row.Type {
		case domain.TransactionTypeIncome:
			sum = sum.Add(row.Amount)
		case domain.TransactionTypeExpense:
			sum = sum.Sub(row.Amount)
		case domain.TransactionTypeReversal:
			if row.ReversedTransactionID == nil {
				continue
			}
			original, ok := byID[*row.ReversedTransactionID]
			if !ok {
				continue
			}
			if original.Type == domain.TransactionTypeIncome {
				sum = sum.Sub(row.Amount)
			} else {
				sum = sum.Add(row.Amount)
			}
		}
	}
	return sum
}

func (m *MockTransactionRepository) RangeTotals(ctx context.Context, cashboxID string, from, to time.Time) (*usecase.RangeTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := &usecase.RangeTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, row := range m.rows {
		if row.CashboxID != cashboxID || row.CreatedAt.Before(from) || !row.CreatedAt.Before(to) {
			continue
		}
		totals.TransactionCount++
		switch row.Type {
		case domain.TransactionTypeIncome:
			totals.Income = totals.Income.Add(row.Amount)
		case domain.TransactionTypeExpense:
			totals.Expense = totals.Expense.Add(row.Amount)
		case domain.TransactionTypeReversal:
			totals.ReversalCount++
		}
	}
	return totals, nil
}

// Rows returns a snapshot of everything stored.
func (m *MockTransactionRepository) Rows() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, 0, len(m.rows))
	for _, row := range m.rows {
		copied := *row
		out = append(out, &copied)
	}
	return out
}

// MockTransaction is a no-op database transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator generates sequential test IDs.
type MockIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{prefix: "id"}
}

func (g *MockIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

// MockAuditRepository collects audit logs in memory.
type MockAuditRepository struct {
	mu   sync.Mutex
	Logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AuditLog
	for _, l := range m.Logs {
		if filter.Action != "" && !strings.EqualFold(string(l.Action), filter.Action) {
			continue
		}
		if filter.CashboxID != "" && l.CashboxID != filter.CashboxID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// MockCache is a map-backed cache.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (c *MockCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("cache miss: %s", key)
}

func (c *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *MockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}
