package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	RecordHash string    `json:"record_hash,omitempty"`
	Decision   string    `json:"decision,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventListingVerification AuditEvent = "listing_verification"
	EventListingCreated      AuditEvent = "listing_created"
	EventRegistryCreated     AuditEvent = "registry_created"
	EventPurchaseRecorded    AuditEvent = "purchase_recorded"
)

// Decision values recorded on listing_verification events.
const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
	DecisionError    = "error"
)

// Store persists audit events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}
