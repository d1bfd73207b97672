package handler

import (
	"math/big"
	"strconv"

	"deedgate/internal/records/dto"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/httputil"
	s "deedgate/pkg/string"
	"deedgate/pkg/validation"
)

// RegisterRequest is the form part of POST /admin/registry.
type RegisterRequest struct {
	dto.Declaration
	Wallet   string `validate:"required,eth_addr"`
	Contact  string `validate:"required,contact,max=254"`
	PriceWei string `validate:"omitempty,numeric,max=78"`
	Publish  string `validate:"omitempty,oneof=true false 1 0"`
}

func (r *RegisterRequest) Bind(values map[string][]string) {
	r.Declaration.Bind(values)
	r.Wallet = httputil.FormValue(values, "wallet")
	r.Contact = httputil.FormValue(values, "contact")
	r.PriceWei = httputil.FormValue(values, "priceWei")
	r.Publish = httputil.FormValue(values, "publish")
}

func (r *RegisterRequest) Normalize() {
	s.TrimStrings(&r.Wallet, &r.Contact, &r.PriceWei, &r.Publish)
}

func (r *RegisterRequest) Validate() error {
	return validation.Validate(r)
}

// publish defaults to true: a registration without a listing slot cannot be listed.
func (r *RegisterRequest) publish() bool {
	if r.Publish == "" {
		return true
	}
	v, err := strconv.ParseBool(r.Publish)
	return err != nil || v
}

func (r *RegisterRequest) wallet() (domain.WalletAddress, error) {
	return domain.ParseWalletAddress(r.Wallet)
}

// price returns nil when no override was given.
func (r *RegisterRequest) price() (*big.Int, error) {
	if r.PriceWei == "" {
		return nil, nil
	}
	p, ok := new(big.Int).SetString(r.PriceWei, 10)
	if !ok || p.Sign() <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "price_wei must be a positive integer")
	}
	return p, nil
}
