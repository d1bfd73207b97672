// Package purchases records marketplace sales that settled on the ledger. The buyer pays
// the contract from their own wallet; this service only confirms the sale on-chain,
// keeps a snapshot for the buyer's history and hands the listing over.
package purchases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"deedgate/internal/ledger"
	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/audit"
	"deedgate/pkg/requestcontext"
)

const (
	msgUnavailable  = "purchase backend unavailable; retry later"
	msgNotOnChain   = "this listing is not on-chain yet"
	msgNotConfirmed = "purchase not confirmed on-chain"
	msgAlreadySold  = "this listing was already purchased"
	msgOwnListing   = "you already own this listing"
)

// Ledger is the read side of the marketplace contract.
type Ledger interface {
	Listing(ctx context.Context, id domain.ContractID) (*ledger.Listing, error)
}

// Listings reads listings and hands a sold one to its buyer.
type Listings interface {
	FindByHash(ctx context.Context, hash domain.RecordHash) (*models.ListingEntry, error)
	MarkPurchased(ctx context.Context, hash domain.RecordHash, buyer domain.WalletAddress) error
}

// Store persists purchases. Create fails with sentinel.ErrAlreadyUsed when the listing or
// the transaction already has a purchase.
type Store interface {
	Create(ctx context.Context, p *models.Purchase) error
	FindByRecordHash(ctx context.Context, hash domain.RecordHash) (*models.Purchase, error)
	ListByBuyer(ctx context.Context, buyer domain.WalletAddress) ([]*models.Purchase, error)
}

// RecordCommand is one buyer's claim that their transaction bought a listing.
type RecordCommand struct {
	Actor      string
	Buyer      domain.WalletAddress
	RecordHash domain.RecordHash
	TxHash     domain.TxHash
}

// RecordResult is the stored purchase. Replayed is true when the same buyer and
// transaction had already been recorded.
type RecordResult struct {
	Purchase *models.Purchase
	Replayed bool
}

type Service struct {
	ledger   Ledger
	listings Listings
	store    Store
	auditor  *audit.Logger
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithAuditLogger(a *audit.Logger) Option {
	return func(s *Service) { s.auditor = a }
}

func New(l Ledger, listings Listings, store Store, opts ...Option) *Service {
	if l == nil {
		panic("purchases.New: ledger is required")
	}
	if listings == nil {
		panic("purchases.New: listing store is required")
	}
	if store == nil {
		panic("purchases.New: purchase store is required")
	}
	s := &Service{ledger: l, listings: listings, store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stores a purchase once the ledger reports the listing sold. Submitting the same
// buyer and transaction again returns the stored purchase and finishes any handover a
// previous attempt left undone.
func (s *Service) Record(ctx context.Context, cmd RecordCommand) (*RecordResult, error) {
	if cmd.Buyer.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "token carries no wallet address")
	}
	if cmd.TxHash.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "tx_hash is required")
	}

	listing, err := s.listings.FindByHash(ctx, cmd.RecordHash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "listing not found")
		}
		return nil, unavailable("find listing", err)
	}

	existing, err := s.store.FindByRecordHash(ctx, cmd.RecordHash)
	switch {
	case err == nil:
		return s.replay(ctx, cmd, listing, existing)
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, unavailable("find purchase", err)
	}

	if listing.ContractID.IsZero() {
		return nil, dErrors.New(dErrors.CodeConflict, msgNotOnChain)
	}
	if listing.OwnerWallet.Equal(cmd.Buyer) {
		return nil, dErrors.New(dErrors.CodeValidation, msgOwnListing)
	}

	onChain, err := s.ledger.Listing(ctx, listing.ContractID)
	if err != nil {
		return nil, unavailable("ledger listing", err)
	}
	if !onChain.Exists || !onChain.Sold {
		return nil, dErrors.New(dErrors.CodeConflict, msgNotConfirmed)
	}

	p, err := models.NewPurchase(domain.NewPurchaseID(), listing, cmd.Buyer, cmd.TxHash, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, unavailable("create purchase", err)
		}
		// Lost a race with a concurrent submission, or the transaction paid for another listing.
		existing, findErr := s.store.FindByRecordHash(ctx, cmd.RecordHash)
		switch {
		case errors.Is(findErr, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeConflict, "transaction already recorded for another listing")
		case findErr != nil:
			return nil, unavailable("find purchase", findErr)
		}
		return s.replay(ctx, cmd, listing, existing)
	}

	if err := s.listings.MarkPurchased(ctx, listing.RecordHash, cmd.Buyer); err != nil {
		return nil, unavailable("mark listing purchased", err)
	}

	s.logger.InfoContext(ctx, "purchase recorded",
		"record_hash", p.RecordHash.String(),
		"contract_id", p.ContractID.String(),
		"buyer", p.BuyerWallet.String(),
		"tx_hash", p.TxHash.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.auditor.Record(ctx, audit.Event{
		Actor:      cmd.Actor,
		Action:     string(audit.EventPurchaseRecorded),
		RecordHash: p.RecordHash.String(),
		Decision:   audit.DecisionAccepted,
	})
	return &RecordResult{Purchase: p}, nil
}

// ListMine returns the wallet's purchases, newest first.
func (s *Service) ListMine(ctx context.Context, buyer domain.WalletAddress) ([]*models.Purchase, error) {
	if buyer.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "a wallet address is required")
	}
	out, err := s.store.ListByBuyer(ctx, buyer)
	if err != nil {
		return nil, unavailable("list purchases", err)
	}
	return out, nil
}

func (s *Service) replay(ctx context.Context, cmd RecordCommand, listing *models.ListingEntry, existing *models.Purchase) (*RecordResult, error) {
	claim := &models.Purchase{BuyerWallet: cmd.Buyer, TxHash: cmd.TxHash}
	if !existing.SameSale(claim) {
		return nil, dErrors.New(dErrors.CodeConflict, msgAlreadySold)
	}
	if !listing.IsSold() || !listing.OwnerWallet.Equal(cmd.Buyer) {
		if err := s.listings.MarkPurchased(ctx, listing.RecordHash, cmd.Buyer); err != nil {
			return nil, unavailable("mark listing purchased", err)
		}
	}
	return &RecordResult{Purchase: existing, Replayed: true}, nil
}

func unavailable(step string, err error) error {
	return &dErrors.Error{Code: dErrors.CodeUnavailable, Message: msgUnavailable, Err: fmt.Errorf("%s: %w", step, err)}
}
