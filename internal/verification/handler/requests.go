package handler

import (
	"deedgate/internal/records/dto"
	"deedgate/pkg/domain"
	"deedgate/pkg/platform/httputil"
	s "deedgate/pkg/string"
	"deedgate/pkg/validation"
)

// VerifyRequest is the form part of POST /listings/verify. The document is read separately.
type VerifyRequest struct {
	dto.Declaration
	Price       string `validate:"max=32"`
	Description string `validate:"max=4000"`
	Image       string `validate:"omitempty,http_url,max=2048"`
	Wallet      string `validate:"omitempty,eth_addr"`
}

func (r *VerifyRequest) Bind(values map[string][]string) {
	r.Declaration.Bind(values)
	r.Price = httputil.FormValue(values, "price")
	r.Description = httputil.FormValue(values, "description")
	r.Image = httputil.FormValue(values, "image")
	r.Wallet = httputil.FormValue(values, "wallet")
}

// Normalize trims the display-only fields. Declared facts are left as submitted.
func (r *VerifyRequest) Normalize() {
	s.TrimStrings(&r.Price, &r.Description, &r.Image, &r.Wallet)
}

func (r *VerifyRequest) Validate() error {
	return validation.Validate(r)
}

// wallet resolves the seller wallet: the token's wallet wins over the form field.
func (r *VerifyRequest) wallet(fromToken domain.WalletAddress) (domain.WalletAddress, error) {
	if !fromToken.IsZero() {
		return fromToken, nil
	}
	return domain.ParseWalletAddress(r.Wallet)
}
