package handler

import (
	"time"

	"deedgate/internal/registration"
)

type RegisterResponse struct {
	RecordHash      string    `json:"record_hash"`
	ContentHash     string    `json:"content_hash"`
	MetadataHash    string    `json:"metadata_hash"`
	AlreadyOnLedger bool      `json:"already_on_ledger"`
	RegisterTx      string    `json:"register_tx,omitempty"`
	ListingTx       string    `json:"listing_tx,omitempty"`
	ContractID      string    `json:"contract_id,omitempty"`
	RegisteredBy    string    `json:"registered_by"`
	RegisteredAt    time.Time `json:"registered_at"`
}

func toRegisterResponse(r *registration.RegisterResult) RegisterResponse {
	resp := RegisterResponse{
		RecordHash:      r.RecordHash.String(),
		ContentHash:     r.ContentHash.String(),
		MetadataHash:    r.MetadataHash,
		AlreadyOnLedger: r.AlreadyOnLedger,
		RegisterTx:      r.RegisterTx,
		ListingTx:       r.ListingTx,
	}
	if !r.ContractID.IsZero() {
		resp.ContractID = r.ContractID.String()
	}
	if r.Entry != nil {
		resp.RegisteredBy = r.Entry.RegisteredBy
		resp.RegisteredAt = r.Entry.CreatedAt
	}
	return resp
}
