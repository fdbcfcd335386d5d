package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atlaserp/cashledger/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"cashbox not found", domain.ErrCashboxNotFound, http.StatusNotFound},
		{"transaction not found", domain.ErrTransactionNotFound, http.StatusNotFound},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"unknown category", domain.ErrUnknownCategory, http.StatusBadRequest},
		{"insufficient balance sentinel", domain.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{
			"insufficient balance with detail",
			&domain.InsufficientBalanceError{CashboxID: "cb-1", Available: decimal.NewFromInt(1), Required: decimal.NewFromInt(2)},
			http.StatusUnprocessableEntity,
		},
		{"inactive cashbox", domain.ErrInactiveCashbox, http.StatusConflict},
		{"already reversed", domain.ErrAlreadyReversed, http.StatusConflict},
		{"reversal of reversal", domain.ErrCannotReverseReversal, http.StatusConflict},
		{"immutable", domain.ErrTransactionImmutable, http.StatusConflict},
		{"lock timeout", domain.ErrLockTimeout, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.want {
				t.Errorf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseTimeQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?at=2026-03-01T10:00:00Z&date=2026-03-01&bad=yesterday", nil)

	at, ok, err := parseTimeQuery(req, "at")
	if err != nil || !ok {
		t.Fatalf("rfc3339: ok=%v err=%v", ok, err)
	}
	if at.Hour() != 10 {
		t.Errorf("hour = %d, want 10", at.Hour())
	}

	date, ok, err := parseTimeQuery(req, "date")
	if err != nil || !ok {
		t.Fatalf("date-only: ok=%v err=%v", ok, err)
	}
	if date.Day() != 1 {
		t.Errorf("day = %d, want 1", date.Day())
	}

	if _, _, err := parseTimeQuery(req, "bad"); err == nil {
		t.Error("expected error for unparseable value")
	}

	if _, ok, err := parseTimeQuery(req, "missing"); ok || err != nil {
		t.Errorf("missing param: ok=%v err=%v", ok, err)
	}
}
