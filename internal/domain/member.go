package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Billing period lengths in whole months.
const (
	PerMonth   = 1
	PerQuarter = 3
	PerYear    = 12
)

// MembershipPlan describes a recurring charge: what it costs, how often it
// recurs, and which income account it credits.
type MembershipPlan struct {
	ID              string
	Name            string
	Cost            decimal.Decimal
	PeriodMonths    int
	HasKeyfob       bool
	HasRoomKey      bool
	HasVoting       bool
	HasPowertools   bool
	IncomeAccountID string
	CreatedAt       time.Time
}

// Validate checks plan invariants.
func (p *MembershipPlan) Validate() error {
	if p.Cost.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	switch p.PeriodMonths {
	case PerMonth, PerQuarter, PerYear:
	default:
		return ErrInvalidBillingPeriod
	}
	return nil
}

// Member is a subscriber's billing state: the liability account debited
// for dues, the assigned plan (nil means the member is never billed), and
// the date through which billing has already been applied.
//
// Version guards concurrent advancement of LastBilled; a billing run that
// loses the race gets ErrStaleBillingState and retries.
type Member struct {
	ID                string
	Name              string
	Email             string
	AccountID         string
	PlanID            *string
	LastBilled        time.Time
	GatewayCustomerID *string
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasPlan reports whether a plan is assigned.
func (m *Member) HasPlan() bool {
	return m.PlanID != nil && *m.PlanID != ""
}
