package handler

import (
	"deedgate/pkg/domain"
	s "deedgate/pkg/string"
	"deedgate/pkg/validation"
)

// RecordRequest is the body of POST /listings/{hash}/purchases.
type RecordRequest struct {
	TxHash string `json:"tx_hash" validate:"required"`
}

func (r *RecordRequest) Normalize() {
	s.TrimStrings(&r.TxHash)
}

func (r *RecordRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	_, err := r.txHash()
	return err
}

func (r *RecordRequest) txHash() (domain.TxHash, error) {
	return domain.ParseTxHash(r.TxHash)
}
