package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is an atomic, immutable financial transaction: a transfer of a
// fixed amount from one debit account to one credit account. Entries are
// append-only; only ModifiedAt may change after creation.
type Entry struct {
	ID              string
	DebitAccountID  string
	CreditAccountID string
	Amount          decimal.Decimal
	Details         string
	EffectiveDate   time.Time
	CreatedAt       time.Time
	ModifiedAt      time.Time
}

// Validate validates a new entry. Equal debit and credit accounts are
// permitted: such an entry nets to zero on the account and never breaks
// the ledger-wide balance.
func (e *Entry) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	if e.DebitAccountID == "" || e.CreditAccountID == "" {
		return ErrUnknownAccount
	}
	return nil
}
