package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"deedgate/internal/documents/archive"
	"deedgate/internal/fingerprint"
	"deedgate/internal/ledger"
	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/audit"
	"deedgate/pkg/platform/tracer"
	"deedgate/pkg/requestcontext"
)

const (
	msgForbidden   = "only admins can register hashes on-chain"
	msgRegistered  = "this deed is already registered"
	msgUnavailable = "registration backend unavailable; retry later"
	msgReverted    = "the ledger rejected the transaction"
)

// maxSlotAttempts bounds retries when a clock-derived contract id is already taken.
const maxSlotAttempts = 3

type Service struct {
	ledger   Ledger
	registry Registry
	archive  archive.Archive
	ids      *ContractIDs
	priceWei *big.Int
	auditor  *audit.Logger
	metrics  *Metrics
	tracer   tracer.Tracer
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithAuditLogger(a *audit.Logger) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithContractIDs replaces the clock-derived id allocator.
func WithContractIDs(ids *ContractIDs) Option {
	return func(s *Service) { s.ids = ids }
}

// WithPriceWei sets the default on-chain listing price.
func WithPriceWei(p *big.Int) Option {
	return func(s *Service) {
		if p != nil && p.Sign() > 0 {
			s.priceWei = new(big.Int).Set(p)
		}
	}
}

func New(l Ledger, registry Registry, arc archive.Archive, opts ...Option) *Service {
	if l == nil {
		panic("registration.New: ledger is required")
	}
	if registry == nil {
		panic("registration.New: registry is required")
	}
	if arc == nil {
		panic("registration.New: archive is required")
	}
	s := &Service{
		ledger:   l,
		registry: registry,
		archive:  arc,
		ids:      NewContractIDs(nil),
		priceWei: new(big.Int).Set(ledger.DefaultPriceWei),
		tracer:   tracer.NewNoop(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register records a deed. Steps run in order and the first failure stops the
// registration; ledger writes already mined stay on-chain, and re-running the same
// registration skips the hash registration it finds there.
func (s *Service) Register(ctx context.Context, capability Capability, cmd RegisterCommand) (result *RegisterResult, err error) {
	if !capability.Admin {
		s.logger.WarnContext(ctx, "non-admin registration attempt",
			"actor", capability.Actor,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.metrics.IncResult(resultForbidden)
		return nil, dErrors.New(dErrors.CodeForbidden, msgForbidden)
	}

	fp := fingerprint.Build(cmd.Document, cmd.Declaration.Facts())
	ctx, span := s.tracer.Start(ctx, tracer.SpanRegister,
		tracer.String(tracer.AttrRecordHash, fp.RecordHash.String()),
		tracer.String(tracer.AttrContentHash, fp.ContentHash.String()),
	)
	defer func() {
		s.metrics.IncResult(resultLabel(err))
		span.End(err)
	}()

	if err := s.ensureNew(ctx, fp.RecordHash); err != nil {
		return nil, err
	}

	if err := s.archive.Put(ctx, archive.Document{
		ContentHash: fp.ContentHash,
		ContentType: cmd.ContentType,
		Data:        cmd.Document,
	}); err != nil {
		return nil, unavailable("archive document", err)
	}

	result = &RegisterResult{
		ContentHash:  fp.ContentHash,
		MetadataHash: fp.MetadataHash,
		RecordHash:   fp.RecordHash,
	}
	if err := s.registerHash(ctx, result); err != nil {
		return nil, err
	}

	if !cmd.SkipPublish {
		price := s.priceWei
		if cmd.PriceWei != nil && cmd.PriceWei.Sign() > 0 {
			price = cmd.PriceWei
		}
		if err := s.publish(ctx, result, price); err != nil {
			return nil, err
		}
		span.SetAttributes(tracer.Int64(tracer.AttrContractID, int64(result.ContractID)))
	}

	entry, err := models.NewRegistryEntry(
		result.RecordHash,
		result.ContentHash,
		result.ContractID,
		cmd.Declaration,
		cmd.Wallet,
		cmd.Contact,
		capability.Actor,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Create(ctx, entry); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, msgRegistered)
		}
		return nil, unavailable("create registry entry", err)
	}
	result.Entry = entry

	s.logger.InfoContext(ctx, "deed registered",
		"record_hash", result.RecordHash.String(),
		"contract_id", result.ContractID.String(),
		"already_on_ledger", result.AlreadyOnLedger,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.auditor.Record(ctx, audit.Event{
		Actor:      capability.Actor,
		Action:     string(audit.EventRegistryCreated),
		RecordHash: result.RecordHash.String(),
		Decision:   audit.DecisionAccepted,
	})
	return result, nil
}

// ensureNew rejects a hash that already has a registry entry before any ledger
// transaction is spent on it.
func (s *Service) ensureNew(ctx context.Context, hash domain.RecordHash) error {
	_, err := s.registry.FindByHash(ctx, hash)
	switch {
	case err == nil:
		return dErrors.New(dErrors.CodeConflict, msgRegistered)
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	default:
		return unavailable("registry lookup", err)
	}
}

func (s *Service) registerHash(ctx context.Context, result *RegisterResult) error {
	registered, err := s.ledger.IsRegistered(ctx, result.RecordHash)
	if err != nil {
		return unavailable("ledger isRegistered", err)
	}
	if registered {
		result.AlreadyOnLedger = true
		return nil
	}

	receipt, err := s.ledger.RegisterHash(ctx, result.RecordHash)
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		// Registered by a concurrent request between the check and the write.
		result.AlreadyOnLedger = true
		return nil
	case err != nil:
		return ledgerError("ledger registerDocumentHash", err)
	}
	result.RegisterTx = receipt.TxHash
	return nil
}

func (s *Service) publish(ctx context.Context, result *RegisterResult, price *big.Int) error {
	var lastErr error
	for range maxSlotAttempts {
		id := s.ids.Next()
		receipt, err := s.ledger.CreateListing(ctx, id, price)
		if err == nil {
			result.ContractID = id
			result.ListingTx = receipt.TxHash
			return nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return ledgerError("ledger createListing", err)
		}
		lastErr = err
		s.logger.WarnContext(ctx, "contract id taken, allocating another",
			"contract_id", id.String(),
		)
	}
	return dErrors.Wrap(lastErr, dErrors.CodeConflict, "no free contract id; retry later")
}

func unavailable(step string, err error) error {
	return &dErrors.Error{Code: dErrors.CodeUnavailable, Message: msgUnavailable, Err: fmt.Errorf("%s: %w", step, err)}
}

// ledgerError separates reverted transactions from transport failures.
func ledgerError(step string, err error) error {
	if errors.Is(err, sentinel.ErrInvalidState) || errors.Is(err, sentinel.ErrInvalidInput) {
		return &dErrors.Error{Code: dErrors.CodeConflict, Message: msgReverted, Err: fmt.Errorf("%s: %w", step, err)}
	}
	return unavailable(step, err)
}
