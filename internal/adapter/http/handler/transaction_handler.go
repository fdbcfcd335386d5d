package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlaserp/cashledger/internal/adapter/http/dto"
	"github.com/atlaserp/cashledger/internal/domain"
	"github.com/atlaserp/cashledger/internal/usecase"
)

// TransactionHandler handles transaction read requests.
type TransactionHandler struct {
	transactionUC *usecase.TransactionUseCase
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC *usecase.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.transactionUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// ListByCashbox lists transactions for a cashbox.
func (h *TransactionHandler) ListByCashbox(w http.ResponseWriter, r *http.Request) {
	cashboxID := chi.URLParam(r, "id")
	if cashboxID == "" {
		writeError(w, http.StatusBadRequest, "missing cashbox ID", "")
		return
	}

	filter := domain.TransactionFilter{
		CashboxID: cashboxID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	if v := r.URL.Query().Get("type"); v != "" {
		t := domain.TransactionType(v)
		filter.Type = &t
	}
	if v := r.URL.Query().Get("category"); v != "" {
		c := domain.Category(v)
		filter.Category = &c
	}
	if v := r.URL.Query().Get("reference_kind"); v != "" {
		k := domain.ReferenceKind(v)
		filter.ReferenceKind = &k
	}
	if v := r.URL.Query().Get("reference_id"); v != "" {
		filter.ReferenceID = &v
	}
	if from, ok, err := parseTimeQuery(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from", err.Error())
		return
	} else if ok {
		filter.From = &from
	}
	if to, ok, err := parseTimeQuery(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to", err.Error())
		return
	} else if ok {
		filter.To = &to
	}

	transactions, err := h.transactionUC.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}

// ResolveSource looks up the record a transaction's reference points at.
func (h *TransactionHandler) ResolveSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	source, err := h.transactionUC.ResolveSource(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve source", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, source)
}
