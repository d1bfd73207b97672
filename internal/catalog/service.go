// Package catalog serves the marketplace listings, optionally annotated with their
// on-chain state.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"deedgate/internal/ledger"
	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
)

const (
	// defaultLookupTimeout caps each ledger call made while annotating one listing.
	defaultLookupTimeout = 3 * time.Second
	// maxConcurrentLookups bounds the annotation fan-out.
	maxConcurrentLookups = 8
)

// Ledger is the read side of the marketplace contract.
type Ledger interface {
	IsRegistered(ctx context.Context, hash domain.RecordHash) (bool, error)
	Listing(ctx context.Context, id domain.ContractID) (*ledger.Listing, error)
}

// Store reads listings.
type Store interface {
	List(ctx context.Context) ([]*models.ListingEntry, error)
	ListByOwnerWallet(ctx context.Context, wallet domain.WalletAddress) ([]*models.ListingEntry, error)
	FindByHash(ctx context.Context, hash domain.RecordHash) (*models.ListingEntry, error)
}

// ChainStatus is the on-chain state of a listing. A nil field means the lookup failed
// or timed out and the state is unknown.
type ChainStatus struct {
	HashFound *bool
	Sold      *bool
	Exists    *bool
}

// Item is one catalogue entry. Chain is nil unless the status was requested.
type Item struct {
	Listing *models.ListingEntry
	Chain   *ChainStatus
}

// Status is the sale state to display: a sale seen on-chain wins over the stored state.
func (i Item) Status() models.ListingStatus {
	if i.Chain != nil && i.Chain.Sold != nil && *i.Chain.Sold {
		return models.ListingStatusSold
	}
	return i.Listing.Status
}

type Service struct {
	ledger        Ledger
	store         Store
	lookupTimeout time.Duration
	metrics       *Metrics
	logger        *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lookupTimeout = d
		}
	}
}

// New creates the catalogue. A nil ledger disables chain status annotations.
func New(l Ledger, store Store, opts ...Option) *Service {
	if store == nil {
		panic("catalog.New: store is required")
	}
	s := &Service{ledger: l, store: store, lookupTimeout: defaultLookupTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every listing, newest first.
func (s *Service) List(ctx context.Context, withStatus bool) ([]Item, error) {
	listings, err := s.store.List(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return s.items(ctx, listings, withStatus)
}

// ListMine returns the listings created from the given wallet, always annotated.
func (s *Service) ListMine(ctx context.Context, wallet domain.WalletAddress) ([]Item, error) {
	if wallet.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "a wallet address is required")
	}
	listings, err := s.store.ListByOwnerWallet(ctx, wallet)
	if err != nil {
		return nil, unavailable(err)
	}
	return s.items(ctx, listings, true)
}

func (s *Service) Get(ctx context.Context, hash domain.RecordHash, withStatus bool) (*Item, error) {
	l, err := s.store.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "listing not found")
		}
		return nil, unavailable(err)
	}
	items, err := s.items(ctx, []*models.ListingEntry{l}, withStatus)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *Service) items(ctx context.Context, listings []*models.ListingEntry, withStatus bool) ([]Item, error) {
	items := make([]Item, len(listings))
	for i, l := range listings {
		items[i] = Item{Listing: l}
	}
	if !withStatus || s.ledger == nil {
		return items, nil
	}

	// Each goroutine owns items[i]; lookups never fail the group.
	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for i := range items {
		g.Go(func() error {
			items[i].Chain = s.chainStatus(ctx, items[i].Listing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) chainStatus(ctx context.Context, l *models.ListingEntry) *ChainStatus {
	status := &ChainStatus{}

	if found, err := s.isRegistered(ctx, l.RecordHash); err == nil {
		status.HashFound = &found
	} else {
		s.lookupFailed(ctx, "is_registered", l, err)
	}

	if l.ContractID.IsZero() {
		exists := false
		status.Exists = &exists
		return status
	}
	if onChain, err := s.listing(ctx, l.ContractID); err == nil {
		status.Exists = &onChain.Exists
		status.Sold = &onChain.Sold
	} else {
		s.lookupFailed(ctx, "listing", l, err)
	}
	return status
}

func (s *Service) isRegistered(ctx context.Context, hash domain.RecordHash) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	start := time.Now()
	found, err := s.ledger.IsRegistered(ctx, hash)
	s.metrics.ObserveLookup("is_registered", start, err)
	return found, err
}

func (s *Service) listing(ctx context.Context, id domain.ContractID) (*ledger.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	start := time.Now()
	l, err := s.ledger.Listing(ctx, id)
	s.metrics.ObserveLookup("listing", start, err)
	return l, err
}

func (s *Service) lookupFailed(ctx context.Context, lookup string, l *models.ListingEntry, err error) {
	s.logger.WarnContext(ctx, "chain status lookup failed",
		"lookup", lookup,
		"record_hash", l.RecordHash.String(),
		"contract_id", l.ContractID.String(),
		"error", err,
	)
}

func unavailable(err error) error {
	return &dErrors.Error{Code: dErrors.CodeUnavailable, Message: "listing store unavailable; retry later", Err: err}
}
