package domain

import (
	"strconv"
	"strings"

	dErrors "deedgate/pkg/domain-errors"
)

// ContractID is the numeric listing slot on the marketplace contract.
// Zero means no on-chain listing was published for the registration.
type ContractID uint64

// ParseContractID parses a decimal contract id. Empty input yields the zero id.
func ParseContractID(s string) (ContractID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid contract ID")
	}
	return ContractID(n), nil
}

func (id ContractID) IsZero() bool   { return id == 0 }
func (id ContractID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id ContractID) Uint64() uint64 { return uint64(id) }
