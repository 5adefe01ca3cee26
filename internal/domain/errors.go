package domain

import "errors"

var (
	// Ledger errors
	ErrInvalidAccountClass = errors.New("account class must be one of asset, expense, equity, liability, income")
	ErrUnknownAccount      = errors.New("account not found")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrEntryNotFound       = errors.New("entry not found")

	// Billing errors
	ErrMemberNotFound    = errors.New("member not found")
	ErrPlanNotFound      = errors.New("membership plan not found")
	ErrStaleBillingState = errors.New("member billing state changed concurrently")
	ErrNoBillingAccount  = errors.New("member has no ledger account")

	// Payment method errors
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrRevenueAccountClass   = errors.New("revenue account must be an asset account")
	ErrFeeAccountClass       = errors.New("fee account must be an expense account")

	// Charge errors
	ErrChargeNotFound     = errors.New("charge not found")
	ErrNoGatewayCustomer  = errors.New("member has no gateway customer")
	ErrChargeSubmitted    = errors.New("charge was already submitted")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected the request")
)
