package registration

import (
	"sync"
	"time"

	"deedgate/pkg/domain"
)

// contractIDModulus keeps clock-derived ids to nine digits.
const contractIDModulus = 1_000_000_000

// ContractIDs hands out listing slots derived from the clock: the last nine digits of
// the Unix time in milliseconds, bumped when needed so ids strictly increase within
// the process.
type ContractIDs struct {
	mu   sync.Mutex
	last uint64
	now  func() time.Time
}

func NewContractIDs(now func() time.Time) *ContractIDs {
	if now == nil {
		now = time.Now
	}
	return &ContractIDs{now: now}
}

func (a *ContractIDs) Next() domain.ContractID {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := uint64(a.now().UnixMilli()) % contractIDModulus
	if id <= a.last {
		id = a.last + 1
	}
	if id == 0 {
		id = 1
	}
	a.last = id
	return domain.ContractID(id)
}
