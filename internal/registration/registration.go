// Package registration is the privileged path that records a deed: it archives the
// document, registers the record hash on the ledger, publishes an on-chain listing
// slot and writes the authoritative registry entry.
package registration

import (
	"context"
	"math/big"

	"deedgate/internal/ledger"
	"deedgate/internal/records/models"
	"deedgate/pkg/domain"
)

// Ledger is the contract surface registration writes to.
type Ledger interface {
	IsRegistered(ctx context.Context, hash domain.RecordHash) (bool, error)
	RegisterHash(ctx context.Context, hash domain.RecordHash) (ledger.Receipt, error)
	CreateListing(ctx context.Context, id domain.ContractID, priceWei *big.Int) (ledger.Receipt, error)
}

// Registry persists registry entries. Create fails with sentinel.ErrAlreadyUsed for a
// record hash that is already registered.
type Registry interface {
	Create(ctx context.Context, entry *models.RegistryEntry) error
	FindByHash(ctx context.Context, hash domain.RecordHash) (*models.RegistryEntry, error)
}

// Capability is the caller's authority, decided at the edge.
type Capability struct {
	Admin bool
	Actor string
}

// RegisterCommand describes one deed to register.
type RegisterCommand struct {
	Document    []byte
	ContentType string
	Declaration models.Declaration
	Wallet      domain.WalletAddress
	Contact     string
	// SkipPublish registers the hash without creating an on-chain listing slot.
	SkipPublish bool
	// PriceWei overrides the configured listing price.
	PriceWei *big.Int
}

// RegisterResult echoes everything an admin needs to audit the registration.
type RegisterResult struct {
	ContentHash     domain.ContentHash
	MetadataHash    string
	RecordHash      domain.RecordHash
	AlreadyOnLedger bool
	RegisterTx      string
	ListingTx       string
	ContractID      domain.ContractID
	Entry           *models.RegistryEntry
}
