package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	dErrors "deedgate/pkg/domain-errors"
)

// WalletAddress is an EVM account address. The zero value means "no wallet".
type WalletAddress common.Address

// ParseWalletAddress validates a 0x-prefixed hex address. Checksums are not enforced
// because wallets report addresses in either case.
func ParseWalletAddress(s string) (WalletAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return WalletAddress{}, dErrors.New(dErrors.CodeInvalidInput, "wallet address cannot be empty")
	}
	if !common.IsHexAddress(s) {
		return WalletAddress{}, dErrors.New(dErrors.CodeInvalidInput, "invalid wallet address")
	}
	return WalletAddress(common.HexToAddress(s)), nil
}

// Address returns the go-ethereum form for ledger calls.
func (w WalletAddress) Address() common.Address { return common.Address(w) }

// String returns the EIP-55 checksummed form.
func (w WalletAddress) String() string {
	if w.IsZero() {
		return ""
	}
	return common.Address(w).Hex()
}

func (w WalletAddress) IsZero() bool { return common.Address(w) == (common.Address{}) }

// Equal compares addresses byte-wise, so case differences in the source text never matter.
func (w WalletAddress) Equal(other WalletAddress) bool { return w == other }

func (w WalletAddress) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *WalletAddress) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*w = WalletAddress{}
		return nil
	}
	parsed, err := ParseWalletAddress(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
