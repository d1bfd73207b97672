// Package ports declares what the verification engine needs from the ledger and the
// record stores. Implementations return internal/sentinel errors; the service translates
// them once.
package ports

import (
	"context"

	"deedgate/internal/records/models"
	"deedgate/pkg/domain"
)

// Ledger answers whether a record hash was registered on-chain.
type Ledger interface {
	IsRegistered(ctx context.Context, hash domain.RecordHash) (bool, error)
}

// RegistryReader looks up the authoritative registration for a hash.
// A missing entry is sentinel.ErrNotFound.
type RegistryReader interface {
	FindByHash(ctx context.Context, hash domain.RecordHash) (*models.RegistryEntry, error)
}

// ListingStore reads and creates marketplace listings.
// CreateIfHashAvailable must fail with sentinel.ErrAlreadyUsed when a listing for the
// same record hash already exists, atomically with the insert.
type ListingStore interface {
	FindByHash(ctx context.Context, hash domain.RecordHash) (*models.ListingEntry, error)
	CreateIfHashAvailable(ctx context.Context, listing *models.ListingEntry) error
}
