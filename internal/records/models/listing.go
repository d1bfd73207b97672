package models

import (
	"time"

	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
)

// DefaultListingImage is shown until the seller uploads photos.
const DefaultListingImage = "https://via.placeholder.com/400x260?text=Listing"

// ListingEntry is the marketplace-visible record derived from a verified registration.
// At most one exists per record hash.
type ListingEntry struct {
	ID           domain.ListingID
	RecordHash   domain.RecordHash
	ContractID   domain.ContractID
	Title        string
	City         string
	PriceUSD     float64
	Beds         float64
	Baths        float64
	Area         float64
	Owner        string
	OwnerWallet  domain.WalletAddress
	PropertyType PropertyType
	Description  string
	Image        string
	Verified     bool
	Status       ListingStatus
	CreatedAt    time.Time
}

// ListingDisplay carries the submitter-provided fields that are shown in the catalogue
// but never hashed.
type ListingDisplay struct {
	Title        string
	City         string
	PriceUSD     float64
	Beds         float64
	Baths        float64
	Area         float64
	Owner        string
	PropertyType PropertyType
	Description  string
	Image        string
}

func (l *ListingEntry) IsSold() bool {
	return l.Status == ListingStatusSold
}

// NewVerifiedListing builds the listing created when a submission passes verification.
func NewVerifiedListing(
	id domain.ListingID,
	recordHash domain.RecordHash,
	contractID domain.ContractID,
	display ListingDisplay,
	wallet domain.WalletAddress,
	now time.Time,
) (*ListingEntry, error) {
	if recordHash.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "listing requires a record hash")
	}
	if contractID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "verified listing requires a contract id")
	}
	title := display.Title
	if title == "" {
		title = "Untitled"
	}
	image := display.Image
	if image == "" {
		image = DefaultListingImage
	}
	return &ListingEntry{
		ID:           id,
		RecordHash:   recordHash,
		ContractID:   contractID,
		Title:        title,
		City:         display.City,
		PriceUSD:     display.PriceUSD,
		Beds:         display.Beds,
		Baths:        display.Baths,
		Area:         display.Area,
		Owner:        display.Owner,
		OwnerWallet:  wallet,
		PropertyType: display.PropertyType,
		Description:  display.Description,
		Image:        image,
		Verified:     true,
		Status:       ListingStatusForSale,
		CreatedAt:    now,
	}, nil
}
