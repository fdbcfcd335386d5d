package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atlaserp/cashledger/internal/adapter/http/dto"
	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/usecase"
)

// LedgerHandler handles ledger write and reporting requests.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// RecordIncome records an income transaction.
func (h *LedgerHandler) RecordIncome(w http.ResponseWriter, r *http.Request) {
	h.recordEntry(w, r, h.ledgerUC.RecordIncome)
}

// RecordExpense records an expense transaction.
func (h *LedgerHandler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	h.recordEntry(w, r, h.ledgerUC.RecordExpense)
}

type recordFunc func(ctx context.Context, input usecase.RecordEntryInput) (*domain.Transaction, error)

func (h *LedgerHandler) recordEntry(w http.ResponseWriter, r *http.Request, record recordFunc) {
	cashboxID := chi.URLParam(r, "id")
	if cashboxID == "" {
		writeError(w, http.StatusBadRequest, "missing cashbox ID", "")
		return
	}

	var req dto.RecordEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := record(r.Context(), req.ToUseCaseInput(cashboxID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Reverse creates a reversal for a prior transaction.
func (h *LedgerHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "id")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.ReverseTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reversal, err := h.ledgerUC.ReverseTransaction(r.Context(), req.ToUseCaseInput(transactionID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reverse transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(reversal))
}

// Reconcile replays the ledger and corrects drift for one cashbox.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing cashbox ID", "")
		return
	}

	result, err := h.ledgerUC.Reconcile(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile cashbox", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// DailySummary returns the derived end-of-day report for one cashbox.
func (h *LedgerHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing cashbox ID", "")
		return
	}

	date, ok, err := parseTimeQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}
	if !ok {
		date = time.Now().UTC()
	}

	summary, err := h.ledgerUC.GetDailySummary(r.Context(), id, date)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get daily summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// BalanceAt returns the balance of a cashbox at a past instant.
func (h *LedgerHandler) BalanceAt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing cashbox ID", "")
		return
	}

	at, ok, err := parseTimeQuery(r, "at")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp", err.Error())
		return
	}
	if !ok {
		at = time.Now().UTC()
	}

	balance, err := h.ledgerUC.BalanceAtDate(r.Context(), id, at)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		CashboxID: id,
		At:        at,
		Balance:   balance,
	})
}
