package archive

import (
	"context"
	"fmt"
	"sync"

	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
)

type InMemory struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[string]Document)}
}

func (a *InMemory) Put(_ context.Context, doc Document) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	doc.Data = append([]byte(nil), doc.Data...)
	a.docs[ObjectKey(doc.ContentHash)] = doc
	return nil
}

func (a *InMemory) Get(_ context.Context, hash domain.ContentHash) (*Document, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	doc, ok := a.docs[ObjectKey(hash)]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", hash, sentinel.ErrNotFound)
	}
	doc.Data = append([]byte(nil), doc.Data...)
	return &doc, nil
}

func (a *InMemory) Exists(_ context.Context, hash domain.ContentHash) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.docs[ObjectKey(hash)]
	return ok, nil
}

var _ Archive = (*InMemory)(nil)
