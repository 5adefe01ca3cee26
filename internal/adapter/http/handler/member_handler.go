package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/duesledger/internal/adapter/http/dto"
	"github.com/iho/duesledger/internal/domain"
	"github.com/iho/duesledger/internal/usecase"
)

// MemberService defines the behavior needed by MemberHandler.
type MemberService interface {
	CreatePlan(ctx context.Context, input usecase.CreatePlanInput) (*domain.MembershipPlan, error)
	GetPlan(ctx context.Context, id string) (*domain.MembershipPlan, error)
	ListPlans(ctx context.Context, limit, offset int) ([]*domain.MembershipPlan, error)
	CreateMember(ctx context.Context, input usecase.CreateMemberInput) (*domain.Member, error)
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	ListMembers(ctx context.Context, limit, offset int) ([]*domain.Member, error)
	AssignPlan(ctx context.Context, memberID string, planID *string) error
}

// BillingService defines the billing behavior needed by MemberHandler.
type BillingService interface {
	NextBillDate(ctx context.Context, member *domain.Member) (*time.Time, error)
	IsBillingCurrent(ctx context.Context, member *domain.Member, today time.Time) (*bool, error)
	RunBillingCycle(ctx context.Context, memberID string, today time.Time) (*domain.Entry, error)
	RunDueBilling(ctx context.Context, today time.Time) (*usecase.BillingRunReport, error)
}

// MemberHandler handles member and plan HTTP requests.
type MemberHandler struct {
	memberUC  MemberService
	billingUC BillingService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(memberUC MemberService, billingUC BillingService) *MemberHandler {
	return &MemberHandler{memberUC: memberUC, billingUC: billingUC}
}

// CreatePlan creates a membership plan.
func (h *MemberHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	plan, err := h.memberUC.CreatePlan(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create plan", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PlanFromDomain(plan))
}

// GetPlan retrieves a plan by ID.
func (h *MemberHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.memberUC.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get plan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PlanFromDomain(plan))
}

// ListPlans lists membership plans.
func (h *MemberHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.memberUC.ListPlans(r.Context(), parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list plans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PlansFromDomain(plans))
}

// CreateMember creates a member.
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid last_billed date", err.Error())
		return
	}

	member, err := h.memberUC.CreateMember(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create member", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MemberFromDomain(member))
}

// GetMember retrieves a member by ID.
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberUC.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get member", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// ListMembers lists members.
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberUC.ListMembers(r.Context(), parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MembersFromDomain(members))
}

// AssignPlan assigns or removes a member's plan.
func (h *MemberHandler) AssignPlan(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	memberID := chi.URLParam(r, "id")
	if err := h.memberUC.AssignPlan(r.Context(), memberID, req.PlanID); err != nil {
		writeError(w, mapDomainError(err), "failed to assign plan", err.Error())
		return
	}

	member, err := h.memberUC.GetMember(r.Context(), memberID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get member", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MemberFromDomain(member))
}

// BillingStatus reports the member's next bill date and whether they are
// current.
func (h *MemberHandler) BillingStatus(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")

	member, err := h.memberUC.GetMember(r.Context(), memberID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get member", err.Error())
		return
	}

	next, err := h.billingUC.NextBillDate(r.Context(), member)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute bill date", err.Error())
		return
	}

	now := time.Now().UTC()
	current, err := h.billingUC.IsBillingCurrent(r.Context(), member, domain.Date(now.Year(), now.Month(), now.Day()))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute billing status", err.Error())
		return
	}

	resp := dto.BillingStatusResponse{MemberID: memberID, Current: current}
	if next != nil {
		formatted := next.Format("2006-01-02")
		resp.NextBillDate = &formatted
	}

	writeJSON(w, http.StatusOK, resp)
}

// RunMemberBilling catches one member up on billing.
func (h *MemberHandler) RunMemberBilling(w http.ResponseWriter, r *http.Request) {
	var req dto.RunBillingRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	today, err := req.TodayOrNow()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid billing date", err.Error())
		return
	}

	memberID := chi.URLParam(r, "id")
	var entries []*dto.EntryResponse
	for {
		entry, err := h.billingUC.RunBillingCycle(r.Context(), memberID, today)
		if err != nil {
			writeError(w, mapDomainError(err), "billing cycle failed", err.Error())
			return
		}
		if entry == nil {
			break
		}
		entries = append(entries, dto.EntryFromDomain(entry))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"member_id": memberID,
		"entries":   entries,
	})
}

// RunAllBilling runs billing for every member.
func (h *MemberHandler) RunAllBilling(w http.ResponseWriter, r *http.Request) {
	var req dto.RunBillingRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	today, err := req.TodayOrNow()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid billing date", err.Error())
		return
	}

	report, err := h.billingUC.RunDueBilling(r.Context(), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "billing run failed", err.Error())
		return
	}

	resp := dto.BillingRunResponse{
		MembersSeen:   report.MembersSeen,
		MembersBilled: report.MembersBilled,
		EntriesPosted: report.EntriesPosted,
	}
	if len(report.Errors) > 0 {
		resp.Errors = make(map[string]string, len(report.Errors))
		for id, err := range report.Errors {
			resp.Errors[id] = err.Error()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
