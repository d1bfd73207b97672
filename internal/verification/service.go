package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"deedgate/internal/fingerprint"
	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/internal/verification/metrics"
	"deedgate/internal/verification/ports"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/audit"
	"deedgate/pkg/platform/tracer"
	"deedgate/pkg/requestcontext"
)

// Service decides whether a seller's submission may become a marketplace listing.
// The pipeline is sequential and every failure is terminal; there are no retries here.
type Service struct {
	ledger   ports.Ledger
	registry ports.RegistryReader
	listings ports.ListingStore
	auditor  *audit.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	logger   *slog.Logger
	newID    func() domain.ListingID
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithAuditLogger sets where decision events go. Without it events are dropped.
func WithAuditLogger(a *audit.Logger) Option {
	return func(s *Service) { s.auditor = a }
}

// WithIDGenerator overrides listing id generation, for tests.
func WithIDGenerator(fn func() domain.ListingID) Option {
	return func(s *Service) { s.newID = fn }
}

// New creates a verification service. Panics if a port is nil.
func New(ledger ports.Ledger, registry ports.RegistryReader, listings ports.ListingStore, opts ...Option) *Service {
	if ledger == nil {
		panic("verification.New: ledger port is required")
	}
	if registry == nil {
		panic("verification.New: registry port is required")
	}
	if listings == nil {
		panic("verification.New: listing store is required")
	}
	s := &Service{
		ledger:   ledger,
		registry: registry,
		listings: listings,
		tracer:   tracer.NewNoop(),
		logger:   slog.Default(),
		newID:    domain.NewListingID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pipeline carries per-submission state between stages.
type pipeline struct {
	sub         Submission
	stage       Stage
	contentHash domain.ContentHash
	recordHash  domain.RecordHash
	onLedger    bool
	entry       *models.RegistryEntry
	span        tracer.Span
}

func (p *pipeline) reach(stage Stage) {
	p.stage = stage
	p.span.AddEvent(tracer.EventStageReached, tracer.String(tracer.AttrStage, string(stage)))
}

// Verify runs the submission through hashing, registry lookup, identity check, contract
// resolution and duplicate check, and creates the listing when all pass.
// Rejections are *dErrors.Error values with a terminal code; backend failures carry
// dErrors.CodeUnavailable.
func (s *Service) Verify(ctx context.Context, sub Submission) (result *Result, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrOwnerIDHash, tracer.HashOwnerID(sub.Declaration.OwnerID)),
	)
	p := &pipeline{sub: sub, span: span}
	defer func() {
		s.finish(ctx, p, err, time.Since(start))
		if dErrors.IsRetryable(err) {
			span.End(err)
			return
		}
		span.End(nil)
	}()

	p.reach(StageHashing)
	fp := fingerprint.Build(sub.Document, sub.Declaration.Facts())
	p.contentHash = fp.ContentHash
	p.recordHash = fp.RecordHash
	span.SetAttributes(tracer.String(tracer.AttrRecordHash, p.recordHash.String()))

	p.reach(StageRegistryLookup)
	if err := s.lookup(ctx, p); err != nil {
		return nil, err
	}

	p.reach(StageIdentityCheck)
	if !MatchIdentity(sub.Declaration, p.entry.Declaration) {
		return nil, errIdentityMismatch()
	}

	p.reach(StageContractResolution)
	if !p.entry.HasContract() {
		return nil, errUnpublishedRegistration()
	}
	span.SetAttributes(tracer.Int64(tracer.AttrContractID, int64(p.entry.ContractID)))

	p.reach(StageDuplicateCheck)
	listing, err := s.createListing(ctx, p)
	if err != nil {
		return nil, err
	}

	p.reach(StageAccepted)
	return &Result{
		Outcome:          OutcomeAccepted,
		Stage:            StageAccepted,
		ContentHash:      p.contentHash,
		RecordHash:       p.recordHash,
		LedgerRegistered: p.onLedger,
		Listing:          listing,
	}, nil
}

// lookup resolves the registry entry. The ledger or the registry may vouch for the
// hash; a ledger-only registration without an entry is an inconsistent state.
func (s *Service) lookup(ctx context.Context, p *pipeline) error {
	onLedger, err := s.ledger.IsRegistered(ctx, p.recordHash)
	if err != nil {
		return errUnavailable(fmt.Errorf("ledger isRegistered: %w", err))
	}
	p.onLedger = onLedger

	entry, err := s.registry.FindByHash(ctx, p.recordHash)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		if onLedger {
			return errRegistryInconsistent()
		}
		return errNotRegistered()
	case err != nil:
		return errUnavailable(fmt.Errorf("registry lookup: %w", err))
	}
	p.entry = entry
	return nil
}

// createListing checks for an existing listing, then inserts with the store's atomic
// uniqueness guard so a racer that slipped past the check is still rejected.
func (s *Service) createListing(ctx context.Context, p *pipeline) (*models.ListingEntry, error) {
	existing, err := s.listings.FindByHash(ctx, p.recordHash)
	switch {
	case err == nil && existing != nil:
		return nil, errDuplicateListing()
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		return nil, errUnavailable(fmt.Errorf("listing lookup: %w", err))
	}

	listing, err := models.NewVerifiedListing(
		s.newID(),
		p.recordHash,
		p.entry.ContractID,
		p.sub.display(),
		p.sub.Wallet,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.listings.CreateIfHashAvailable(ctx, listing); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, errDuplicateListing()
		}
		return nil, errUnavailable(fmt.Errorf("listing create: %w", err))
	}
	return listing, nil
}

// finish logs, audits and counts the decision.
func (s *Service) finish(ctx context.Context, p *pipeline, err error, elapsed time.Duration) {
	outcome, decision, reason := OutcomeAccepted, audit.DecisionAccepted, ""
	switch {
	case dErrors.IsRetryable(err):
		outcome, decision, reason = OutcomeError, audit.DecisionError, reasonOf(err)
		s.logger.ErrorContext(ctx, "listing verification failed",
			"record_hash", p.recordHash.String(),
			"stage", string(p.stage),
			"error", err,
		)
	case err != nil:
		outcome, decision, reason = OutcomeRejected, audit.DecisionRejected, reasonOf(err)
		s.logger.InfoContext(ctx, "listing verification rejected",
			"record_hash", p.recordHash.String(),
			"stage", string(p.stage),
			"reason", reason,
		)
	default:
		s.logger.InfoContext(ctx, "listing verification accepted",
			"record_hash", p.recordHash.String(),
			"contract_id", p.entry.ContractID.String(),
		)
	}
	p.span.SetAttributes(
		tracer.String(tracer.AttrOutcome, string(outcome)),
		tracer.String(tracer.AttrStage, string(p.stage)),
	)
	s.metrics.ObserveDecision(string(outcome), reason, elapsed)

	s.auditor.Record(ctx, audit.Event{
		Actor:      p.sub.Actor,
		Action:     string(audit.EventListingVerification),
		RecordHash: p.recordHash.String(),
		Decision:   decision,
		Reason:     reason,
	})
	if err == nil {
		s.auditor.Record(ctx, audit.Event{
			Actor:      p.sub.Actor,
			Action:     string(audit.EventListingCreated),
			RecordHash: p.recordHash.String(),
			Decision:   audit.DecisionAccepted,
		})
	}
	p.span.AddEvent(tracer.EventAuditEmitted)
}
