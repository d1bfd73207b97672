// Package domain provides type-safe identifiers and hash values to prevent mixing them up at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "deedgate/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a UserID where a ListingID is expected.
type (
	UserID     uuid.UUID
	ListingID  uuid.UUID
	PurchaseID uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseListingID(s string) (ListingID, error) {
	id, err := parseUUID(s, "listing ID")
	return ListingID(id), err
}

// New* functions - generate fresh random IDs.

func NewUserID() UserID       { return UserID(uuid.New()) }
func NewListingID() ListingID { return ListingID(uuid.New()) }

func NewPurchaseID() PurchaseID { return PurchaseID(uuid.New()) }

// String methods - for logging and debugging.

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id ListingID) String() string { return uuid.UUID(id).String() }

func (id PurchaseID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ListingID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
