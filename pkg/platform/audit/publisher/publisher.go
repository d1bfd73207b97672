package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	dErrors "deedgate/pkg/domain-errors"
	audit "deedgate/pkg/platform/audit"
	"deedgate/pkg/platform/audit/metrics"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  audit.Store
	events chan audit.Event
	wg     sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
	async   bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics records queue depth and persistence outcomes.
func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

// processEvents runs in a goroutine and persists events from the channel.
func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		p.metrics.DequeuedOne()
		if err := p.persist(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"record_hash", event.RecordHash,
			)
		}
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	start := time.Now()
	err := p.store.Append(ctx, event)
	p.metrics.ObservePersist(time.Since(start).Seconds(), err)
	return err
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

func (p *Publisher) Emit(ctx context.Context, base audit.Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	if p.async {
		select {
		case p.events <- base:
			p.metrics.IncEnqueued()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			p.metrics.IncDropped()
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", base.Action,
					"record_hash", base.RecordHash,
				)
			}
			return dErrors.New(dErrors.CodeInternal, "audit buffer full")
		}
	}
	return p.persist(ctx, base)
}
