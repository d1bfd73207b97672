package audit

import (
	"context"
	"log/slog"

	"deedgate/pkg/requestcontext"
)

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger writes an audit event to the structured log and emits it to the audit store.
// Emission is best effort: failures are logged and never surface to the caller.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. Either argument may be nil.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Record enriches the event with the request id from ctx, logs it and emits it.
func (l *Logger) Record(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	l.logToText(ctx, event)
	l.emitToAudit(ctx, event)
}

func (l *Logger) logToText(ctx context.Context, event Event) {
	if l.textLogger == nil {
		return
	}
	l.textLogger.InfoContext(ctx, event.Action,
		"log_type", "audit",
		"actor", event.Actor,
		"record_hash", event.RecordHash,
		"decision", event.Decision,
		"reason", event.Reason,
		"request_id", event.RequestID,
	)
}

func (l *Logger) emitToAudit(ctx context.Context, event Event) {
	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
