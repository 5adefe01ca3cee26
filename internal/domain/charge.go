package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChargeState tracks a charge through its gateway lifecycle.
type ChargeState string

const (
	ChargeStateUnprocessed ChargeState = "unprocessed"
	ChargeStateSubmitted   ChargeState = "submitted"
	ChargeStateSuccessful  ChargeState = "successful"
	ChargeStateFailed      ChargeState = "failed"
	ChargeStateCompleted   ChargeState = "completed"
)

// Terminal reports whether the state admits no further transitions.
// Failed charges never produce entries; completed charges already have
// all of theirs.
func (s ChargeState) Terminal() bool {
	return s == ChargeStateFailed || s == ChargeStateCompleted
}

// Charge is one attempt to collect money through the external gateway.
// On success it is responsible for the ledger entries crediting the
// member's account and recording the gateway fee, exactly once.
type Charge struct {
	ID              string
	MemberID        string
	PaymentMethodID string
	ExternalID      string
	Amount          decimal.Decimal
	Currency        string
	State           ChargeState
	EntryIDs        []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks charge invariants at creation time.
func (c *Charge) Validate() error {
	if c.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	return ValidateCurrency(c.Currency)
}
