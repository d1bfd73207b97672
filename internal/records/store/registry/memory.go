package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
)

// ErrNotFound is returned when no registry entry exists for a record hash.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores registry entries in memory for dev mode and tests.
type InMemory struct {
	mu      sync.RWMutex
	entries map[domain.RecordHash]models.RegistryEntry
}

// NewInMemory creates an in-memory registry store.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[domain.RecordHash]models.RegistryEntry)}
}

// Create inserts the entry once; a second entry for the same record hash is rejected.
func (s *InMemory) Create(_ context.Context, entry *models.RegistryEntry) error {
	if entry == nil {
		return fmt.Errorf("registry entry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.RecordHash]; exists {
		return fmt.Errorf("record hash already registered: %w", sentinel.ErrAlreadyUsed)
	}
	s.entries[entry.RecordHash] = *entry
	return nil
}

// FindByHash retrieves the entry registered under a record hash.
func (s *InMemory) FindByHash(_ context.Context, hash domain.RecordHash) (*models.RegistryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[hash]; ok {
		return &e, nil
	}
	return nil, ErrNotFound
}

// List returns all entries, newest first.
func (s *InMemory) List(_ context.Context) ([]*models.RegistryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.RegistryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Count returns the total number of registry entries.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}
