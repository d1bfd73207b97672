package models

import (
	"time"

	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
)

// Purchase records a confirmed on-chain sale. The listing fields are a snapshot taken
// at purchase time so the buyer's history survives later listing edits.
type Purchase struct {
	ID          domain.PurchaseID
	RecordHash  domain.RecordHash
	ContractID  domain.ContractID
	BuyerWallet domain.WalletAddress
	TxHash      domain.TxHash
	Title       string
	City        string
	PriceUSD    float64
	Beds        float64
	Baths       float64
	Area        float64
	CreatedAt   time.Time
}

// NewPurchase snapshots the listing for its buyer. Only listings that exist on-chain can
// be bought, so a zero contract id is an invariant violation.
func NewPurchase(
	id domain.PurchaseID,
	listing *ListingEntry,
	buyer domain.WalletAddress,
	tx domain.TxHash,
	now time.Time,
) (*Purchase, error) {
	if listing == nil || listing.RecordHash.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "purchase requires a listing")
	}
	if listing.ContractID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "purchase requires an on-chain listing")
	}
	if buyer.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "purchase requires a buyer wallet")
	}
	if tx.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "purchase requires a transaction hash")
	}
	return &Purchase{
		ID:          id,
		RecordHash:  listing.RecordHash,
		ContractID:  listing.ContractID,
		BuyerWallet: buyer,
		TxHash:      tx,
		Title:       listing.Title,
		City:        listing.City,
		PriceUSD:    listing.PriceUSD,
		Beds:        listing.Beds,
		Baths:       listing.Baths,
		Area:        listing.Area,
		CreatedAt:   now,
	}, nil
}

// SameSale reports whether other records the same buyer and transaction, which makes a
// repeated submission a replay rather than a conflict.
func (p *Purchase) SameSale(other *Purchase) bool {
	return other != nil && p.BuyerWallet.Equal(other.BuyerWallet) && p.TxHash == other.TxHash
}
