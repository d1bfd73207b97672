package purchase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
)

// ErrNotFound is returned when no purchase exists for a record hash.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores purchases in memory for dev mode and tests.
type InMemory struct {
	mu        sync.RWMutex
	purchases map[domain.RecordHash]models.Purchase
	txIdx     map[domain.TxHash]domain.RecordHash
}

// NewInMemory creates an in-memory purchase store.
func NewInMemory() *InMemory {
	return &InMemory{
		purchases: make(map[domain.RecordHash]models.Purchase),
		txIdx:     make(map[domain.TxHash]domain.RecordHash),
	}
}

// Create records the purchase. A listing sells once and a transaction pays for one
// listing, so a repeated record hash or tx hash is rejected.
func (s *InMemory) Create(_ context.Context, p *models.Purchase) error {
	if p == nil {
		return fmt.Errorf("purchase is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.purchases[p.RecordHash]; exists {
		return fmt.Errorf("listing already purchased: %w", sentinel.ErrAlreadyUsed)
	}
	if _, exists := s.txIdx[p.TxHash]; exists {
		return fmt.Errorf("transaction already recorded: %w", sentinel.ErrAlreadyUsed)
	}
	s.purchases[p.RecordHash] = *p
	s.txIdx[p.TxHash] = p.RecordHash
	return nil
}

// FindByRecordHash retrieves the purchase of a listing.
func (s *InMemory) FindByRecordHash(_ context.Context, hash domain.RecordHash) (*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.purchases[hash]; ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

// ListByBuyer returns the wallet's purchases, newest first.
func (s *InMemory) ListByBuyer(_ context.Context, buyer domain.WalletAddress) ([]*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Purchase, 0)
	for _, p := range s.purchases {
		if p.BuyerWallet.Equal(buyer) {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
