package domain

import "time"

// PaymentMethod binds an external charge-processing option to ledger
// accounts: gross proceeds land on the revenue account (asset class) and
// gateway fees on the fee account (expense class) when one is configured.
type PaymentMethod struct {
	ID               string
	Name             string
	IsRecurring      bool
	IsAutomated      bool
	RevenueAccountID string
	FeeAccountID     *string
	CreatedAt        time.Time
}

// HasFeeAccount reports whether gateway fees have a home.
func (pm *PaymentMethod) HasFeeAccount() bool {
	return pm.FeeAccountID != nil && *pm.FeeAccountID != ""
}
