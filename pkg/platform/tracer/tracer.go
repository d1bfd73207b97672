// Package tracer provides a lightweight tracing abstraction for the verification pipeline
// and the ledger adapters.
//
// The interface does not depend on OpenTelemetry APIs, so services emit spans without
// importing a tracing SDK. Implementations:
//   - NoopTracer: for tests and when tracing is disabled
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording err when non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context carries the span and should be passed to child operations.
	//
	// Example:
	//   ctx, span := tr.Start(ctx, tracer.SpanVerify,
	//       tracer.String(tracer.AttrRecordHash, hash.String()),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashOwnerID returns a short SHA-256 digest of a national id so traces can be
// correlated without carrying the id itself.
func HashOwnerID(ownerID string) string {
	if ownerID == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanVerify          = "listing.verify"
	SpanRegister        = "registry.register"
	SpanLedgerCall      = "ledger.call"
	SpanDocumentCompare = "documents.compare"
)

// Attribute keys.
const (
	AttrRecordHash  = "record_hash"
	AttrContentHash = "content_hash"
	AttrOwnerIDHash = "owner_id_hash"
	AttrContractID  = "contract_id"
	AttrStage       = "stage"
	AttrOutcome     = "outcome"
	AttrMethod      = "method"
	AttrCacheHit    = "cache.hit"
)

// Event names.
const (
	EventStageReached = "stage.reached"
	EventAuditEmitted = "audit.emitted"
)
