package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/adapter/http/dto"
	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/usecase"
	"github.com/atlaserp/cashledger/internal/usecase/mocks"
)

func newTestRouter(t *testing.T, seed ...*domain.Cashbox) (chi.Router, *mocks.MockCashboxRepository) {
	t.Helper()

	cashboxRepo := mocks.NewMockCashboxRepository()
	for _, box := range seed {
		cashboxRepo.Seed(box)
	}

	ledgerUC := usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		cashboxRepo,
		mocks.NewMockTransactionRepository(),
		nil,
		mocks.NewMockIDGenerator(),
		nil,
		nil,
	)

	h := NewLedgerHandler(ledgerUC)

	r := chi.NewRouter()
	r.Post("/cashboxes/{id}/income", h.RecordIncome)
	r.Post("/cashboxes/{id}/expense", h.RecordExpense)
	r.Post("/cashboxes/{id}/reconcile", h.Reconcile)
	r.Post("/transactions/{id}/reverse", h.Reverse)
	r.Get("/cashboxes/{id}/balance", h.BalanceAt)
	r.Get("/cashboxes/{id}/summary", h.DailySummary)

	return r, cashboxRepo
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestLedgerHandler_RecordIncome(t *testing.T) {
	router, _ := newTestRouter(t, &domain.Cashbox{
		ID: "cb-1", Name: "till", InitialBalance: decimal.NewFromInt(100),
		CurrentBalance: decimal.NewFromInt(100), IsActive: true,
	})

	rec := postJSON(t, router, "/cashboxes/cb-1/income", dto.RecordEntryRequest{
		Amount:   decimal.NewFromInt(50),
		Category: "payment",
		ActorID:  "u1",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != "income" {
		t.Errorf("type = %s, want income", resp.Type)
	}
	if !resp.BalanceAfter.Equal(decimal.NewFromInt(150)) {
		t.Errorf("balance_after = %s, want 150", resp.BalanceAfter)
	}
}

func TestLedgerHandler_RecordExpense_InsufficientBalance(t *testing.T) {
	router, _ := newTestRouter(t, &domain.Cashbox{
		ID: "cb-1", CurrentBalance: decimal.NewFromInt(30), IsActive: true,
	})

	rec := postJSON(t, router, "/cashboxes/cb-1/expense", dto.RecordEntryRequest{
		Amount:   decimal.NewFromInt(100),
		Category: "expense",
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message == "" {
		t.Error("expected available/required detail in error message")
	}
}

func TestLedgerHandler_RecordIncome_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		payload dto.RecordEntryRequest
		want    int
	}{
		{"zero amount", dto.RecordEntryRequest{Amount: decimal.Zero, Category: "payment"}, http.StatusBadRequest},
		{"unknown category", dto.RecordEntryRequest{Amount: decimal.NewFromInt(5), Category: "tips"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &domain.Cashbox{
				ID: "cb-1", CurrentBalance: decimal.NewFromInt(100), IsActive: true,
			})

			rec := postJSON(t, router, "/cashboxes/cb-1/income", tt.payload)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLedgerHandler_RecordIncome_InactiveCashbox(t *testing.T) {
	router, _ := newTestRouter(t, &domain.Cashbox{
		ID: "cb-1", CurrentBalance: decimal.NewFromInt(100), IsActive: false,
	})

	rec := postJSON(t, router, "/cashboxes/cb-1/income", dto.RecordEntryRequest{
		Amount:   decimal.NewFromInt(5),
		Category: "payment",
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLedgerHandler_Reverse_Conflicts(t *testing.T) {
	router, _ := newTestRouter(t, &domain.Cashbox{
		ID: "cb-1", CurrentBalance: decimal.NewFromInt(100), IsActive: true,
	})

	rec := postJSON(t, router, "/cashboxes/cb-1/expense", dto.RecordEntryRequest{
		Amount:   decimal.NewFromInt(10),
		Category: "expense",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense setup failed: %d", rec.Code)
	}

	var expense dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = postJSON(t, router, "/transactions/"+expense.ID+"/reverse", dto.ReverseTransactionRequest{Reason: "undo"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first reverse: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, router, "/transactions/"+expense.ID+"/reverse", dto.ReverseTransactionRequest{Reason: "again"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second reverse: expected 409, got %d", rec.Code)
	}

	rec = postJSON(t, router, "/transactions/missing/reverse", dto.ReverseTransactionRequest{Reason: "x"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing transaction: expected 404, got %d", rec.Code)
	}
}

func TestLedgerHandler_Reconcile(t *testing.T) {
	router, _ := newTestRouter(t, &domain.Cashbox{
		ID: "cb-1", InitialBalance: decimal.NewFromInt(40),
		CurrentBalance: decimal.NewFromInt(40), IsActive: true,
	})

	req := httptest.NewRequest(http.MethodPost, "/cashboxes/cb-1/reconcile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ReconciliationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Corrected {
		t.Error("expected no correction for clean cashbox")
	}
	if !resp.ReplayedBalance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("replayed = %s, want 40", resp.ReplayedBalance)
	}
}

func TestLedgerHandler_BalanceAt(t *testing.T) {
	router, _ := newTestRouter(t, &domain.Cashbox{
		ID: "cb-1", InitialBalance: decimal.NewFromInt(75),
		CurrentBalance: decimal.NewFromInt(75), IsActive: true,
	})

	req := httptest.NewRequest(http.MethodGet, "/cashboxes/cb-1/balance?at=2026-01-15T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Balance.Equal(decimal.NewFromInt(75)) {
		t.Errorf("balance = %s, want 75", resp.Balance)
	}
}

func TestLedgerHandler_BalanceAt_UnknownCashbox(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/cashboxes/nope/balance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
