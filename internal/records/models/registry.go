package models

import (
	"time"

	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
)

// RegistryEntry is the authoritative record written by an admin when a deed is registered.
// Entries are created once and never updated or deleted.
type RegistryEntry struct {
	RecordHash   domain.RecordHash
	ContentHash  domain.ContentHash
	ContractID   domain.ContractID
	Declaration  Declaration
	Wallet       domain.WalletAddress
	Contact      string
	RegisteredBy string
	CreatedAt    time.Time
}

// HasContract reports whether an on-chain listing slot was published for the registration.
func (e *RegistryEntry) HasContract() bool {
	return !e.ContractID.IsZero()
}

func NewRegistryEntry(
	recordHash domain.RecordHash,
	contentHash domain.ContentHash,
	contractID domain.ContractID,
	decl Declaration,
	wallet domain.WalletAddress,
	contact, registeredBy string,
	now time.Time,
) (*RegistryEntry, error) {
	if recordHash.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registry entry requires a record hash")
	}
	if contentHash.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registry entry requires a content hash")
	}
	return &RegistryEntry{
		RecordHash:   recordHash,
		ContentHash:  contentHash,
		ContractID:   contractID,
		Declaration:  decl,
		Wallet:       wallet,
		Contact:      contact,
		RegisteredBy: registeredBy,
		CreatedAt:    now,
	}, nil
}
