package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/usecase"
	"github.com/atlaserp/cashledger/tests/testutil"
)

func TestConcurrentLedgerWrites(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	ledgerUC, cashboxRepo, txnRepo := newLedgerStack(testDB)

	t.Run("100 concurrent expenses never overdraw", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		// Exactly enough for 100 expenses of 10.
		box := testDB.CreateTestCashboxWithBalance(ctx, "drawer", decimal.NewFromInt(1000))

		numWrites := 100
		amount := decimal.NewFromInt(10)

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			errorCount   atomic.Int32
		)

		wg.Add(numWrites)

		for range numWrites {
			go func() {
				defer wg.Done()

				_, err := ledgerUC.RecordExpense(ctx, usecase.RecordEntryInput{
					CashboxID: box.ID, Amount: amount,
					Category: domain.CategoryExpense, Description: "burst", ActorID: "user-1",
				})
				if err != nil {
					errorCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != int32(numWrites) {
			t.Errorf("expected %d successful expenses, got %d (errors: %d)", numWrites, successCount.Load(), errorCount.Load())
		}

		stored, _ := cashboxRepo.GetByID(ctx, box.ID)
		if !stored.CurrentBalance.Equal(decimal.Zero) {
			t.Errorf("expected balance 0, got %s", stored.CurrentBalance)
		}
	})

	t.Run("concurrent expenses reject overdraft", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		box := testDB.CreateTestCashboxWithBalance(ctx, "drawer", decimal.NewFromInt(100))

		numWrites := 20
		amount := decimal.NewFromInt(10) // 20 * 10 = 200 > 100

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
		)

		wg.Add(numWrites)

		for range numWrites {
			go func() {
				defer wg.Done()

				_, err := ledgerUC.RecordExpense(ctx, usecase.RecordEntryInput{
					CashboxID: box.ID, Amount: amount,
					Category: domain.CategoryExpense, Description: "burst", ActorID: "user-1",
				})
				if err == nil {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != 10 {
			t.Errorf("expected 10 successful expenses, got %d", successCount.Load())
		}

		stored, _ := cashboxRepo.GetByID(ctx, box.ID)
		if !stored.CurrentBalance.Equal(decimal.Zero) {
			t.Errorf("expected balance 0, got %s", stored.CurrentBalance)
		}
	})

	t.Run("concurrent reversals let exactly one through", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		box := testDB.CreateTestCashboxWithBalance(ctx, "drawer", decimal.NewFromInt(1000))

		original, err := ledgerUC.RecordIncome(ctx, usecase.RecordEntryInput{
			CashboxID: box.ID, Amount: decimal.NewFromInt(100),
			Category: domain.CategoryPayment, Description: "sale", ActorID: "user-1",
		})
		if err != nil {
			t.Fatalf("failed to record income: %v", err)
		}

		numAttempts := 10

		var (
			wg             sync.WaitGroup
			successCount   atomic.Int32
			conflictCount  atomic.Int32
			unexpectedErrs atomic.Int32
		)

		wg.Add(numAttempts)

		for range numAttempts {
			go func() {
				defer wg.Done()

				_, err := ledgerUC.ReverseTransaction(ctx, usecase.ReverseTransactionInput{
					TransactionID: original.ID, ActorID: "user-1",
				})
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, domain.ErrAlreadyReversed):
					conflictCount.Add(1)
				default:
					unexpectedErrs.Add(1)
					t.Errorf("unexpected reversal error: %v", err)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != 1 {
			t.Errorf("expected exactly 1 successful reversal, got %d", successCount.Load())
		}
		if conflictCount.Load() != int32(numAttempts-1) {
			t.Errorf("expected %d conflicts, got %d", numAttempts-1, conflictCount.Load())
		}

		stored, _ := cashboxRepo.GetByID(ctx, box.ID)
		if !stored.CurrentBalance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected balance restored to 1000, got %s", stored.CurrentBalance)
		}

		rows, err := txnRepo.List(ctx, domain.TransactionFilter{CashboxID: box.ID})
		if err != nil {
			t.Fatalf("failed to list transactions: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("expected original plus one reversal, got %d rows", len(rows))
		}
	})
}
