package listing

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
)

// ErrNotFound is returned when no listing exists for a record hash.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores listings in memory for dev mode and tests.
type InMemory struct {
	mu       sync.RWMutex
	listings map[domain.ListingID]models.ListingEntry
	hashIdx  map[domain.RecordHash]domain.ListingID
}

// NewInMemory creates an in-memory listing store.
func NewInMemory() *InMemory {
	return &InMemory{
		listings: make(map[domain.ListingID]models.ListingEntry),
		hashIdx:  make(map[domain.RecordHash]domain.ListingID),
	}
}

// CreateIfHashAvailable atomically creates the listing unless one already exists for its record hash.
func (s *InMemory) CreateIfHashAvailable(_ context.Context, l *models.ListingEntry) error {
	if l == nil {
		return fmt.Errorf("listing is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.hashIdx[l.RecordHash]; exists {
		return fmt.Errorf("record hash already listed: %w", sentinel.ErrAlreadyUsed)
	}
	s.listings[l.ID] = *l
	s.hashIdx[l.RecordHash] = l.ID
	return nil
}

// FindByHash retrieves the listing for a record hash.
func (s *InMemory) FindByHash(_ context.Context, hash domain.RecordHash) (*models.ListingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.hashIdx[hash]; ok {
		l := s.listings[id]
		return &l, nil
	}
	return nil, ErrNotFound
}

// MarkPurchased hands the listing to its buyer and marks it sold.
func (s *InMemory) MarkPurchased(_ context.Context, hash domain.RecordHash, buyer domain.WalletAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.hashIdx[hash]
	if !ok {
		return ErrNotFound
	}
	l := s.listings[id]
	l.OwnerWallet = buyer
	l.Status = models.ListingStatusSold
	s.listings[id] = l
	return nil
}

// List returns every listing, newest first.
func (s *InMemory) List(_ context.Context) ([]*models.ListingEntry, error) {
	return s.filter(func(*models.ListingEntry) bool { return true }), nil
}

// ListByOwnerWallet returns listings created by the given wallet, newest first.
func (s *InMemory) ListByOwnerWallet(_ context.Context, wallet domain.WalletAddress) ([]*models.ListingEntry, error) {
	return s.filter(func(l *models.ListingEntry) bool { return l.OwnerWallet.Equal(wallet) }), nil
}

// Count returns the total number of listings.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings), nil
}

func (s *InMemory) filter(keep func(*models.ListingEntry) bool) []*models.ListingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ListingEntry, 0, len(s.listings))
	for _, l := range s.listings {
		if keep(&l) {
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
