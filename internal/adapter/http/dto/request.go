package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/domain"
	"github.com/iho/duesledger/internal/usecase"
)

const dateLayout = "2006-01-02"

// CreateAccountRequest represents a request to create a ledger account.
type CreateAccountRequest struct {
	GnucashAccount string `json:"gnucash_account"`
	Class          string `json:"class"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		GnucashAccount: r.GnucashAccount,
		Class:          domain.AccountClass(r.Class),
	}
}

// PostEntryRequest represents a request to post a ledger entry.
type PostEntryRequest struct {
	DebitAccountID  string          `json:"debit_account_id"`
	CreditAccountID string          `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Details         string          `json:"details"`
	EffectiveDate   string          `json:"effective_date"`
}

// ToUseCaseInput converts to use case input. An unset effective date
// falls back to today.
func (r *PostEntryRequest) ToUseCaseInput() (usecase.PostEntryInput, error) {
	effectiveDate := time.Now().UTC().Truncate(24 * time.Hour)
	if r.EffectiveDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, r.EffectiveDate, time.UTC)
		if err != nil {
			return usecase.PostEntryInput{}, err
		}
		effectiveDate = parsed
	}

	return usecase.PostEntryInput{
		DebitAccountID:  r.DebitAccountID,
		CreditAccountID: r.CreditAccountID,
		Amount:          r.Amount,
		Details:         r.Details,
		EffectiveDate:   effectiveDate,
	}, nil
}

// CreatePlanRequest represents a request to create a membership plan.
type CreatePlanRequest struct {
	Name            string `json:"name"`
	Cost            string `json:"cost"`
	PeriodMonths    int    `json:"period_months"`
	HasKeyfob       bool   `json:"has_keyfob"`
	HasRoomKey      bool   `json:"has_room_key"`
	HasVoting       bool   `json:"has_voting"`
	HasPowertools   bool   `json:"has_powertools"`
	IncomeAccountID string `json:"income_account_id"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePlanRequest) ToUseCaseInput() usecase.CreatePlanInput {
	return usecase.CreatePlanInput{
		Name:            r.Name,
		Cost:            r.Cost,
		PeriodMonths:    r.PeriodMonths,
		HasKeyfob:       r.HasKeyfob,
		HasRoomKey:      r.HasRoomKey,
		HasVoting:       r.HasVoting,
		HasPowertools:   r.HasPowertools,
		IncomeAccountID: r.IncomeAccountID,
	}
}

// CreateMemberRequest represents a request to create a member.
type CreateMemberRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	AccountID  string  `json:"account_id"`
	PlanID     *string `json:"plan_id,omitempty"`
	LastBilled string  `json:"last_billed,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateMemberRequest) ToUseCaseInput() (usecase.CreateMemberInput, error) {
	input := usecase.CreateMemberInput{
		Name:      r.Name,
		Email:     r.Email,
		AccountID: r.AccountID,
		PlanID:    r.PlanID,
	}

	if r.LastBilled != "" {
		parsed, err := time.ParseInLocation(dateLayout, r.LastBilled, time.UTC)
		if err != nil {
			return usecase.CreateMemberInput{}, err
		}
		input.LastBilled = parsed
	}

	return input, nil
}

// AssignPlanRequest represents a request to assign or remove a member's
// plan. A null plan_id removes the plan.
type AssignPlanRequest struct {
	PlanID *string `json:"plan_id"`
}

// CreatePaymentMethodRequest represents a request to configure a payment
// method.
type CreatePaymentMethodRequest struct {
	Name             string  `json:"name"`
	IsRecurring      bool    `json:"is_recurring"`
	IsAutomated      bool    `json:"is_automated"`
	RevenueAccountID string  `json:"revenue_account_id"`
	FeeAccountID     *string `json:"fee_account_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePaymentMethodRequest) ToUseCaseInput() usecase.CreatePaymentMethodInput {
	return usecase.CreatePaymentMethodInput{
		Name:             r.Name,
		IsRecurring:      r.IsRecurring,
		IsAutomated:      r.IsAutomated,
		RevenueAccountID: r.RevenueAccountID,
		FeeAccountID:     r.FeeAccountID,
	}
}

// SubmitChargeRequest represents a request to submit a charge.
type SubmitChargeRequest struct {
	MemberID        string `json:"member_id"`
	PaymentMethodID string `json:"payment_method_id"`
	Amount          string `json:"amount"`
	Description     string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitChargeRequest) ToUseCaseInput() usecase.SubmitChargeInput {
	return usecase.SubmitChargeInput{
		MemberID:        r.MemberID,
		PaymentMethodID: r.PaymentMethodID,
		Amount:          r.Amount,
		Description:     r.Description,
	}
}

// RunBillingRequest represents a request to run billing. An unset date
// means today.
type RunBillingRequest struct {
	Today string `json:"today,omitempty"`
}

// TodayOrNow resolves the billing date.
func (r *RunBillingRequest) TodayOrNow() (time.Time, error) {
	if r.Today == "" {
		now := time.Now().UTC()
		return domain.Date(now.Year(), now.Month(), now.Day()), nil
	}

	return time.ParseInLocation(dateLayout, r.Today, time.UTC)
}
