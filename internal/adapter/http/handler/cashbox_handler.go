package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlaserp/cashledger/internal/adapter/http/dto"
	"github.com/atlaserp/cashledger/internal/usecase"
)

// CashboxHandler handles cashbox-related HTTP requests.
type CashboxHandler struct {
	cashboxUC *usecase.CashboxUseCase
}

// NewCashboxHandler creates a new CashboxHandler.
func NewCashboxHandler(cashboxUC *usecase.CashboxUseCase) *CashboxHandler {
	return &CashboxHandler{cashboxUC: cashboxUC}
}

// Create creates a new cashbox.
func (h *CashboxHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCashboxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	box, err := h.cashboxUC.CreateCashbox(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create cashbox", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CashboxFromDomain(box))
}

// Get retrieves a cashbox by ID.
func (h *CashboxHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing cashbox ID", "")
		return
	}

	box, err := h.cashboxUC.GetCashbox(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get cashbox", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashboxFromDomain(box))
}

// List lists cashboxes.
func (h *CashboxHandler) List(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.cashboxUC.ListCashboxes(r.Context(), usecase.ListCashboxesInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cashboxes", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashboxesFromDomain(boxes))
}

// Activate re-enables writes to a cashbox.
func (h *CashboxHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate suspends writes to a cashbox.
func (h *CashboxHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *CashboxHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing cashbox ID", "")
		return
	}

	actorID := r.URL.Query().Get("actor_id")

	var err error
	if active {
		err = h.cashboxUC.Activate(r.Context(), id, actorID)
	} else {
		err = h.cashboxUC.Deactivate(r.Context(), id, actorID)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update cashbox", err.Error())
		return
	}

	box, err := h.cashboxUC.GetCashbox(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get cashbox", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashboxFromDomain(box))
}
