// Package dto holds the JSON shapes of registry and listing records shared by handlers.
package dto

import (
	"time"

	"deedgate/internal/records/models"
)

// Listing is the catalogue view of a listing.
type Listing struct {
	ID           string    `json:"id"`
	RecordHash   string    `json:"record_hash"`
	ContractID   string    `json:"contract_id"`
	Title        string    `json:"title"`
	City         string    `json:"city"`
	PriceUSD     float64   `json:"price_usd"`
	Beds         float64   `json:"beds"`
	Baths        float64   `json:"baths"`
	Area         float64   `json:"area"`
	Owner        string    `json:"owner"`
	OwnerWallet  string    `json:"owner_wallet,omitempty"`
	PropertyType string    `json:"property_type"`
	Description  string    `json:"description,omitempty"`
	Image        string    `json:"image"`
	Verified     bool      `json:"verified"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func FromListing(l *models.ListingEntry) Listing {
	return Listing{
		ID:           l.ID.String(),
		RecordHash:   l.RecordHash.String(),
		ContractID:   l.ContractID.String(),
		Title:        l.Title,
		City:         l.City,
		PriceUSD:     l.PriceUSD,
		Beds:         l.Beds,
		Baths:        l.Baths,
		Area:         l.Area,
		Owner:        l.Owner,
		OwnerWallet:  l.OwnerWallet.String(),
		PropertyType: string(l.PropertyType),
		Description:  l.Description,
		Image:        l.Image,
		Verified:     l.Verified,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
	}
}

func FromListings(ls []*models.ListingEntry) []Listing {
	out := make([]Listing, 0, len(ls))
	for _, l := range ls {
		out = append(out, FromListing(l))
	}
	return out
}
