package handler

import (
	"context"
	"net/http"

	"github.com/iho/duesledger/internal/adapter/http/dto"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CheckConsistency(ctx context.Context) error
}

// LedgerHandler handles ledger-wide HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Consistency runs the ledger-wide zero-sum check.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	if err := h.ledgerUC.CheckConsistency(r.Context()); err != nil {
		writeJSON(w, http.StatusConflict, dto.ConsistencyResponse{
			Consistent: false,
			Detail:     err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: true})
}
