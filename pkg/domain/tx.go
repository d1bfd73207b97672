package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	dErrors "deedgate/pkg/domain-errors"
)

// TxHash identifies a ledger transaction. The zero value means "no transaction".
type TxHash common.Hash

// ParseTxHash accepts a 0x-prefixed 32-byte hex hash in either case.
func ParseTxHash(s string) (TxHash, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TxHash{}, dErrors.New(dErrors.CodeInvalidInput, "transaction hash cannot be empty")
	}
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return TxHash{}, dErrors.New(dErrors.CodeInvalidInput, "transaction hash must be 0x followed by 64 hex characters")
	}
	return TxHash(common.BytesToHash(b)), nil
}

func (h TxHash) Hash() common.Hash { return common.Hash(h) }

// String returns the lowercase 0x form.
func (h TxHash) String() string {
	if h.IsZero() {
		return ""
	}
	return common.Hash(h).Hex()
}

func (h TxHash) IsZero() bool { return common.Hash(h) == (common.Hash{}) }
