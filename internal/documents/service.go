// Package documents compares deed files by content hash and validates deed uploads.
package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"deedgate/internal/documents/archive"
	"deedgate/internal/fingerprint"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/tracer"
)

// LedgerStatus is the advisory on-chain status reported by Compare.
type LedgerStatus string

const (
	LedgerFound       LedgerStatus = "found"
	LedgerNotFound    LedgerStatus = "not_found"
	LedgerUnavailable LedgerStatus = "unavailable"
)

// HashLedger answers isRegistered for a hash.
type HashLedger interface {
	IsRegistered(ctx context.Context, hash domain.RecordHash) (bool, error)
}

// Comparison is the result of comparing a reference deed with a candidate.
type Comparison struct {
	ReferenceHash domain.ContentHash
	CandidateHash domain.ContentHash
	Match         bool
	// Ledger reports whether the candidate's content hash itself was registered on-chain.
	Ledger LedgerStatus
}

type Service struct {
	ledger  HashLedger
	archive archive.Archive
	tracer  tracer.Tracer
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(ledger HashLedger, archive archive.Archive, opts ...Option) *Service {
	if ledger == nil {
		panic("documents.New: ledger is required")
	}
	if archive == nil {
		panic("documents.New: archive is required")
	}
	s := &Service{ledger: ledger, archive: archive, tracer: tracer.NewNoop(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compare hashes both files concurrently and looks the candidate up on the ledger.
// The ledger status is advisory: a ledger failure never fails the comparison.
func (s *Service) Compare(ctx context.Context, reference, candidate []byte) (*Comparison, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDocumentCompare)
	var spanErr error
	defer func() { span.End(spanErr) }()

	var refHash, candHash domain.ContentHash
	var g errgroup.Group
	g.Go(func() error {
		refHash = fingerprint.ContentHash(reference)
		return nil
	})
	g.Go(func() error {
		candHash = fingerprint.ContentHash(candidate)
		return nil
	})
	_ = g.Wait()

	result := &Comparison{
		ReferenceHash: refHash,
		CandidateHash: candHash,
		Match:         refHash == candHash,
		Ledger:        LedgerNotFound,
	}

	registered, err := s.ledger.IsRegistered(ctx, domain.RecordHash(candHash))
	switch {
	case err != nil:
		spanErr = err
		result.Ledger = LedgerUnavailable
		s.logger.WarnContext(ctx, "ledger lookup failed during compare",
			"content_hash", candHash.String(),
			"error", err,
		)
	case registered:
		result.Ledger = LedgerFound
	}
	span.SetAttributes(
		tracer.String(tracer.AttrContentHash, candHash.String()),
		tracer.Bool("match", result.Match),
	)
	return result, nil
}

// Fetch returns an archived deed.
func (s *Service) Fetch(ctx context.Context, hash domain.ContentHash) (*archive.Document, error) {
	doc, err := s.archive.Get(ctx, hash)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	case err != nil:
		return nil, dErrors.Wrap(fmt.Errorf("archive get: %w", err), dErrors.CodeUnavailable, "document archive unavailable; retry later")
	}
	return doc, nil
}
