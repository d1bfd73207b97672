package handler

import (
	"deedgate/internal/records/dto"
	"deedgate/internal/verification"
)

type VerifyResponse struct {
	Outcome          string      `json:"outcome"`
	Stage            string      `json:"stage"`
	ContentHash      string      `json:"content_hash"`
	RecordHash       string      `json:"record_hash"`
	LedgerRegistered bool        `json:"ledger_registered"`
	Listing          dto.Listing `json:"listing"`
}

func toVerifyResponse(r *verification.Result) VerifyResponse {
	return VerifyResponse{
		Outcome:          string(r.Outcome),
		Stage:            string(r.Stage),
		ContentHash:      r.ContentHash.String(),
		RecordHash:       r.RecordHash.String(),
		LedgerRegistered: r.LedgerRegistered,
		Listing:          dto.FromListing(r.Listing),
	}
}
