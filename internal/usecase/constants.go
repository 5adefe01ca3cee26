package usecase

import "time"

const (
	// BillingLockTTL bounds how long a wedged billing run can hold a
	// member's lock before another run may take over.
	BillingLockTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// MinorUnitsPerMajor converts gateway minor units to decimal major
	// units (cents to dollars).
	MinorUnitsPerMajor = 100
)
