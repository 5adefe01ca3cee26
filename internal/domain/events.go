package domain

import "time"

// Event types
const (
	EventTypeEntryPosted     = "entry.posted"
	EventTypeMemberBilled    = "member.billed"
	EventTypeChargeSubmitted = "charge.submitted"
	EventTypeChargeCompleted = "charge.completed"
	EventTypeChargeFailed    = "charge.failed"
)

// Aggregate types
const (
	AggregateTypeEntry  = "entry"
	AggregateTypeMember = "member"
	AggregateTypeCharge = "charge"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// MemberBilledEvent payload
type MemberBilledEvent struct {
	MemberID      string `json:"member_id"`
	PlanID        string `json:"plan_id"`
	EntryID       string `json:"entry_id"`
	Amount        string `json:"amount"`
	EffectiveDate string `json:"effective_date"`
}

// ChargeSubmittedEvent payload
type ChargeSubmittedEvent struct {
	ChargeID   string `json:"charge_id"`
	MemberID   string `json:"member_id"`
	ExternalID string `json:"external_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
}

// ChargeCompletedEvent payload
type ChargeCompletedEvent struct {
	ChargeID   string   `json:"charge_id"`
	MemberID   string   `json:"member_id"`
	ExternalID string   `json:"external_id"`
	EntryIDs   []string `json:"entry_ids"`
}

// ChargeFailedEvent payload
type ChargeFailedEvent struct {
	ChargeID   string `json:"charge_id"`
	MemberID   string `json:"member_id"`
	ExternalID string `json:"external_id"`
}
