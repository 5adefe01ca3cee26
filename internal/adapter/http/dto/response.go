package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string    `json:"id"`
	GnucashAccount string    `json:"gnucash_account"`
	Class          string    `json:"class"`
	CreatedAt      time.Time `json:"created_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		GnucashAccount: a.GnucashAccount,
		Class:          string(a.Class),
		CreatedAt:      a.CreatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// BalanceResponse represents an account balance in API responses.
type BalanceResponse struct {
	AccountID  string          `json:"account_id"`
	Balance    decimal.Decimal `json:"balance"`
	Normalized decimal.Decimal `json:"normalized"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID              string          `json:"id"`
	DebitAccountID  string          `json:"debit_account_id"`
	CreditAccountID string          `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Details         string          `json:"details"`
	EffectiveDate   string          `json:"effective_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:              e.ID,
		DebitAccountID:  e.DebitAccountID,
		CreditAccountID: e.CreditAccountID,
		Amount:          e.Amount,
		Details:         e.Details,
		EffectiveDate:   e.EffectiveDate.Format(dateLayout),
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// PlanResponse represents a membership plan in API responses.
type PlanResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Cost            decimal.Decimal `json:"cost"`
	PeriodMonths    int             `json:"period_months"`
	HasKeyfob       bool            `json:"has_keyfob"`
	HasRoomKey      bool            `json:"has_room_key"`
	HasVoting       bool            `json:"has_voting"`
	HasPowertools   bool            `json:"has_powertools"`
	IncomeAccountID string          `json:"income_account_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PlanFromDomain converts a domain plan to a response.
func PlanFromDomain(p *domain.MembershipPlan) *PlanResponse {
	return &PlanResponse{
		ID:              p.ID,
		Name:            p.Name,
		Cost:            p.Cost,
		PeriodMonths:    p.PeriodMonths,
		HasKeyfob:       p.HasKeyfob,
		HasRoomKey:      p.HasRoomKey,
		HasVoting:       p.HasVoting,
		HasPowertools:   p.HasPowertools,
		IncomeAccountID: p.IncomeAccountID,
		CreatedAt:       p.CreatedAt,
	}
}

// PlansFromDomain converts domain plans to responses.
func PlansFromDomain(plans []*domain.MembershipPlan) []*PlanResponse {
	result := make([]*PlanResponse, len(plans))
	for i, p := range plans {
		result[i] = PlanFromDomain(p)
	}
	return result
}

// MemberResponse represents a member in API responses.
type MemberResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	AccountID         string    `json:"account_id"`
	PlanID            *string   `json:"plan_id,omitempty"`
	LastBilled        string    `json:"last_billed"`
	GatewayCustomerID *string   `json:"gateway_customer_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MemberFromDomain converts a domain member to a response.
func MemberFromDomain(m *domain.Member) *MemberResponse {
	return &MemberResponse{
		ID:                m.ID,
		Name:              m.Name,
		Email:             m.Email,
		AccountID:         m.AccountID,
		PlanID:            m.PlanID,
		LastBilled:        m.LastBilled.Format(dateLayout),
		GatewayCustomerID: m.GatewayCustomerID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// MembersFromDomain converts domain members to responses.
func MembersFromDomain(members []*domain.Member) []*MemberResponse {
	result := make([]*MemberResponse, len(members))
	for i, m := range members {
		result[i] = MemberFromDomain(m)
	}
	return result
}

// BillingStatusResponse reports a member's billing position.
type BillingStatusResponse struct {
	MemberID     string  `json:"member_id"`
	NextBillDate *string `json:"next_bill_date,omitempty"`
	Current      *bool   `json:"current,omitempty"`
}

// PaymentMethodResponse represents a payment method in API responses.
type PaymentMethodResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	IsRecurring      bool      `json:"is_recurring"`
	IsAutomated      bool      `json:"is_automated"`
	RevenueAccountID string    `json:"revenue_account_id"`
	FeeAccountID     *string   `json:"fee_account_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// PaymentMethodFromDomain converts a domain payment method to a response.
func PaymentMethodFromDomain(m *domain.PaymentMethod) *PaymentMethodResponse {
	return &PaymentMethodResponse{
		ID:               m.ID,
		Name:             m.Name,
		IsRecurring:      m.IsRecurring,
		IsAutomated:      m.IsAutomated,
		RevenueAccountID: m.RevenueAccountID,
		FeeAccountID:     m.FeeAccountID,
		CreatedAt:        m.CreatedAt,
	}
}

// PaymentMethodsFromDomain converts domain payment methods to responses.
func PaymentMethodsFromDomain(methods []*domain.PaymentMethod) []*PaymentMethodResponse {
	result := make([]*PaymentMethodResponse, len(methods))
	for i, m := range methods {
		result[i] = PaymentMethodFromDomain(m)
	}
	return result
}

// ChargeResponse represents a charge in API responses.
type ChargeResponse struct {
	ID              string          `json:"id"`
	MemberID        string          `json:"member_id"`
	PaymentMethodID string          `json:"payment_method_id"`
	ExternalID      string          `json:"external_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	State           string          `json:"state"`
	EntryIDs        []string        `json:"entry_ids,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ChargeFromDomain converts a domain charge to a response.
func ChargeFromDomain(c *domain.Charge) *ChargeResponse {
	return &ChargeResponse{
		ID:              c.ID,
		MemberID:        c.MemberID,
		PaymentMethodID: c.PaymentMethodID,
		ExternalID:      c.ExternalID,
		Amount:          c.Amount,
		Currency:        c.Currency,
		State:           string(c.State),
		EntryIDs:        c.EntryIDs,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// ChargesFromDomain converts domain charges to responses.
func ChargesFromDomain(charges []*domain.Charge) []*ChargeResponse {
	result := make([]*ChargeResponse, len(charges))
	for i, c := range charges {
		result[i] = ChargeFromDomain(c)
	}
	return result
}

// CustomerResponse reports a member's gateway customer binding.
type CustomerResponse struct {
	MemberID   string `json:"member_id"`
	CustomerID string `json:"customer_id"`
}

// BillingRunResponse summarizes a billing run.
type BillingRunResponse struct {
	MembersSeen   int               `json:"members_seen"`
	MembersBilled int               `json:"members_billed"`
	EntriesPosted int               `json:"entries_posted"`
	Errors        map[string]string `json:"errors,omitempty"`
}

// ChargeSyncResponse summarizes a charge reconciliation pass.
type ChargeSyncResponse struct {
	ChargesSeen int               `json:"charges_seen"`
	Completed   int               `json:"completed"`
	Failed      int               `json:"failed"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// ConsistencyResponse reports the ledger-wide zero-sum check.
type ConsistencyResponse struct {
	Consistent bool   `json:"consistent"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
