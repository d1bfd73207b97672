package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
)

// Memory is an in-process ledger for dev mode and tests. It mirrors the contract's
// rules: a hash registers once and a listing slot is created once.
type Memory struct {
	mu       sync.RWMutex
	hashes   map[domain.RecordHash]struct{}
	listings map[domain.ContractID]Listing
	owner    domain.WalletAddress
	nonce    uint64
}

// NewMemory creates an empty ledger whose transactions are signed by owner.
func NewMemory(owner domain.WalletAddress) *Memory {
	return &Memory{
		hashes:   make(map[domain.RecordHash]struct{}),
		listings: make(map[domain.ContractID]Listing),
		owner:    owner,
	}
}

func (m *Memory) IsRegistered(_ context.Context, hash domain.RecordHash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.hashes[hash]
	return ok, nil
}

func (m *Memory) RegisterHash(_ context.Context, hash domain.RecordHash) (Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hashes[hash]; ok {
		return Receipt{}, fmt.Errorf("hash already registered: %w", sentinel.ErrAlreadyUsed)
	}
	m.hashes[hash] = struct{}{}
	return m.receipt(MethodRegisterHash, hash.String()), nil
}

func (m *Memory) CreateListing(_ context.Context, id domain.ContractID, priceWei *big.Int) (Receipt, error) {
	if id.IsZero() {
		return Receipt{}, fmt.Errorf("contract id must be positive: %w", sentinel.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[id]; ok {
		return Receipt{}, fmt.Errorf("listing %s already exists: %w", id, sentinel.ErrAlreadyUsed)
	}
	price := new(big.Int)
	if priceWei != nil {
		price.Set(priceWei)
	}
	m.listings[id] = Listing{ContractID: id, Owner: m.owner, PriceWei: price, Exists: true}
	return m.receipt(MethodCreateListing, id.String()), nil
}

func (m *Memory) Listing(_ context.Context, id domain.ContractID) (*Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.listings[id]
	if !ok {
		return &Listing{ContractID: id, PriceWei: new(big.Int)}, nil
	}
	l.PriceWei = new(big.Int).Set(l.PriceWei)
	return &l, nil
}

// MarkSold flags a listing as purchased. Purchases happen in the buyer's wallet, so only
// seed data and tests call this.
func (m *Memory) MarkSold(id domain.ContractID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return fmt.Errorf("listing %s: %w", id, sentinel.ErrNotFound)
	}
	l.Sold = true
	m.listings[id] = l
	return nil
}

// receipt derives a stable fake transaction hash. Callers hold m.mu.
func (m *Memory) receipt(method, arg string) Receipt {
	m.nonce++
	h := crypto.Keccak256Hash([]byte(fmt.Sprintf("%s:%s:%d", method, arg, m.nonce)))
	return Receipt{TxHash: h.Hex()}
}

var _ Ledger = (*Memory)(nil)
