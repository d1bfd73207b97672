package verification

import (
	"deedgate/internal/records/models"
	"deedgate/pkg/domain"
)

// Stage is a step of the verification pipeline. Stages run in declaration order and
// a failure at any stage ends the pipeline.
type Stage string

const (
	StageHashing            Stage = "hashing"
	StageRegistryLookup     Stage = "registry_lookup"
	StageIdentityCheck      Stage = "identity_check"
	StageContractResolution Stage = "contract_resolution"
	StageDuplicateCheck     Stage = "duplicate_check"
	StageAccepted           Stage = "accepted"
)

// Outcome is the final classification of a submission.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

// Submission is one seller's request to list a property.
// Document and Declaration feed the record hash; the rest is display-only.
type Submission struct {
	Document    []byte
	Declaration models.Declaration
	Price       string
	Description string
	Image       string
	Wallet      domain.WalletAddress
	// Actor identifies the submitter in audit events.
	Actor string
}

// Result describes an accepted submission.
type Result struct {
	Outcome          Outcome
	Stage            Stage
	ContentHash      domain.ContentHash
	RecordHash       domain.RecordHash
	LedgerRegistered bool
	Listing          *models.ListingEntry
}

// display derives the catalogue fields from the declaration and the seller's inputs.
func (s Submission) display() models.ListingDisplay {
	d := s.Declaration
	return models.ListingDisplay{
		Title:        d.PropertyTitle,
		City:         d.Location,
		PriceUSD:     NumberOrZero(s.Price),
		Beds:         NumberOrZero(d.Beds),
		Baths:        NumberOrZero(d.Baths),
		Area:         NumberOrZero(d.Size),
		Owner:        d.OwnerName(),
		PropertyType: d.PropertyType,
		Description:  s.Description,
		Image:        s.Image,
	}
}
