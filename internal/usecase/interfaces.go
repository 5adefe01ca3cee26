package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/domain"
)

// AccountRepository defines data access for ledger accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for ledger entries. Entries are
// append-only; balances are always derived from the entry log, never
// stored as counters.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	// ListByAccount returns entries where the account is either side,
	// ordered by effective date, then creation time, then id.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	// AccountBalance returns the sum of debit entries minus the sum of
	// credit entries referencing the account; zero when none exist.
	AccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	// TotalBalance returns the sum of every account's raw balance, which
	// must be exactly zero in a consistent ledger.
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
}

// MemberRepository defines data access for members.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Member, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Member, error)
	UpdatePlan(ctx context.Context, id string, planID *string, updatedAt time.Time) error
	UpdateGatewayCustomer(ctx context.Context, id, customerID string, updatedAt time.Time) error
	// AdvanceLastBilled moves the member's billing anchor forward. The
	// update is version-checked; a concurrent advancement surfaces as
	// domain.ErrStaleBillingState.
	AdvanceLastBilled(ctx context.Context, tx Transaction, id string, lastBilled time.Time, version int64, updatedAt time.Time) error
}

// PlanRepository defines data access for membership plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.MembershipPlan) error
	GetByID(ctx context.Context, id string) (*domain.MembershipPlan, error)
	List(ctx context.Context, limit, offset int) ([]*domain.MembershipPlan, error)
}

// PaymentMethodRepository defines data access for payment methods.
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *domain.PaymentMethod) error
	GetByID(ctx context.Context, id string) (*domain.PaymentMethod, error)
	List(ctx context.Context, limit, offset int) ([]*domain.PaymentMethod, error)
}

// ChargeRepository defines data access for charges.
type ChargeRepository interface {
	Create(ctx context.Context, charge *domain.Charge) error
	GetByID(ctx context.Context, id string) (*domain.Charge, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Charge, error)
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Charge, error)
	ListByStates(ctx context.Context, states []domain.ChargeState, limit, offset int) ([]*domain.Charge, error)
	UpdateSubmitted(ctx context.Context, tx Transaction, id, externalID string, updatedAt time.Time) error
	UpdateState(ctx context.Context, tx Transaction, id string, state domain.ChargeState, updatedAt time.Time) error
	AddEntry(ctx context.Context, tx Transaction, chargeID, entryID string) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// PaymentGateway is the external charge-processing capability. All
// amounts cross this boundary in minor currency units.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, description, email string) (string, error)
	CreateCharge(ctx context.Context, req GatewayChargeRequest) (*GatewayCharge, error)
	RetrieveCharge(ctx context.Context, externalID string) (*GatewayCharge, error)
	ListSettlements(ctx context.Context, externalID string) ([]GatewaySettlement, error)
}

// Gateway charge statuses. Anything else is "not yet decided" and safe
// to re-poll later.
const (
	GatewayStatusSucceeded = "succeeded"
	GatewayStatusFailed    = "failed"
	GatewayStatusPending   = "pending"
)

// GatewayChargeRequest describes a charge submission.
type GatewayChargeRequest struct {
	AmountMinor int64
	Currency    string
	CustomerID  string
	Description string
}

// GatewayCharge is the gateway's view of a charge.
type GatewayCharge struct {
	ID     string
	Status string
}

// GatewaySettlement is one settlement fragment, in minor currency units.
// A single charge may settle in more than one fragment.
type GatewaySettlement struct {
	GrossMinor int64
	FeeMinor   int64
	NetMinor   int64
}

// BillingLocker serializes billing runs for a single member across
// processes. Different members' runs proceed in parallel.
type BillingLocker interface {
	Acquire(ctx context.Context, memberID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, memberID string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation when it fails with a transient error,
// such as a deadlock or serialization failure.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
