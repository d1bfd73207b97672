// Package ledger is the port to the on-chain marketplace contract and its adapters.
//
// The contract is treated as a black-box key-value store: record hashes are registered
// once, and listings are keyed by a numeric contract id. Every adapter reports
// connectivity failures wrapped in sentinel.ErrUnavailable so callers can tell a
// transport failure from a negative answer.
package ledger

import (
	"context"
	"math/big"

	"deedgate/pkg/domain"
)

// DefaultPriceWei is the fixed listing price used when none is configured (0.0000001 ETH).
var DefaultPriceWei = big.NewInt(100_000_000)

// Ledger is the contract surface used by verification, registration and the catalogue.
type Ledger interface {
	IsRegistered(ctx context.Context, hash domain.RecordHash) (bool, error)
	RegisterHash(ctx context.Context, hash domain.RecordHash) (Receipt, error)
	CreateListing(ctx context.Context, id domain.ContractID, priceWei *big.Int) (Receipt, error)
	Listing(ctx context.Context, id domain.ContractID) (*Listing, error)
}

// Receipt identifies a mined transaction.
type Receipt struct {
	TxHash string
}

// Listing is the on-chain state of a listing slot. A slot nobody created has Exists == false.
type Listing struct {
	ContractID domain.ContractID
	Owner      domain.WalletAddress
	PriceWei   *big.Int
	Sold       bool
	Exists     bool
}

// Method names, used for metrics and tracing labels.
const (
	MethodIsRegistered  = "isRegistered"
	MethodRegisterHash  = "registerDocumentHash"
	MethodCreateListing = "createListing"
	MethodListing       = "listings"
)
