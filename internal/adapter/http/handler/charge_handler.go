package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/duesledger/internal/adapter/http/dto"
	"github.com/iho/duesledger/internal/domain"
	"github.com/iho/duesledger/internal/usecase"
)

// ChargeService defines the behavior needed by ChargeHandler.
type ChargeService interface {
	CreatePaymentMethod(ctx context.Context, input usecase.CreatePaymentMethodInput) (*domain.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, limit, offset int) ([]*domain.PaymentMethod, error)
	EnsureCustomer(ctx context.Context, memberID string) (string, error)
	SubmitCharge(ctx context.Context, input usecase.SubmitChargeInput) (*domain.Charge, error)
	GetCharge(ctx context.Context, id string) (*domain.Charge, error)
	ListChargesByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Charge, error)
	SyncCharge(ctx context.Context, chargeID string) (*domain.Charge, error)
	SyncPendingCharges(ctx context.Context) (*usecase.ChargeSyncReport, error)
}

// ChargeHandler handles payment method and charge HTTP requests.
type ChargeHandler struct {
	chargeUC ChargeService
}

// NewChargeHandler creates a new ChargeHandler.
func NewChargeHandler(chargeUC ChargeService) *ChargeHandler {
	return &ChargeHandler{chargeUC: chargeUC}
}

// CreatePaymentMethod configures a payment method.
func (h *ChargeHandler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	method, err := h.chargeUC.CreatePaymentMethod(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create payment method", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentMethodFromDomain(method))
}

// ListPaymentMethods lists payment methods.
func (h *ChargeHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.chargeUC.ListPaymentMethods(r.Context(), parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payment methods", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentMethodsFromDomain(methods))
}

// EnsureCustomer provisions a gateway customer for a member.
func (h *ChargeHandler) EnsureCustomer(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")

	customerID, err := h.chargeUC.EnsureCustomer(r.Context(), memberID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to provision customer", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomerResponse{
		MemberID:   memberID,
		CustomerID: customerID,
	})
}

// Submit creates and submits a charge.
func (h *ChargeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	charge, err := h.chargeUC.SubmitCharge(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		if charge != nil {
			// The charge row exists; report its state alongside the error.
			writeJSON(w, status, map[string]any{
				"error":  err.Error(),
				"charge": dto.ChargeFromDomain(charge),
			})
			return
		}
		writeError(w, status, "failed to submit charge", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ChargeFromDomain(charge))
}

// Get retrieves a charge by ID.
func (h *ChargeHandler) Get(w http.ResponseWriter, r *http.Request) {
	charge, err := h.chargeUC.GetCharge(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get charge", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ChargeFromDomain(charge))
}

// ListByMember lists a member's charges.
func (h *ChargeHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	charges, err := h.chargeUC.ListChargesByMember(r.Context(), chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list charges", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ChargesFromDomain(charges))
}

// Sync reconciles one charge with the gateway.
func (h *ChargeHandler) Sync(w http.ResponseWriter, r *http.Request) {
	charge, err := h.chargeUC.SyncCharge(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to sync charge", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ChargeFromDomain(charge))
}

// SyncAll reconciles every non-terminal charge.
func (h *ChargeHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.chargeUC.SyncPendingCharges(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "charge sync failed", err.Error())
		return
	}

	resp := dto.ChargeSyncResponse{
		ChargesSeen: report.ChargesSeen,
		Completed:   report.Completed,
		Failed:      report.Failed,
	}
	if len(report.Errors) > 0 {
		resp.Errors = make(map[string]string, len(report.Errors))
		for id, err := range report.Errors {
			resp.Errors[id] = err.Error()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
