//go:build integration

// Package containers starts the backing services used by integration suites.
// Each container is started on first use and shared by every suite in the test binary.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out the shared containers.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	kafka    *KafkaContainer
	redis    *RedisContainer
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the process-wide manager.
func GetManager() *Manager {
	managerOnce.Do(func() { manager = &Manager{} })
	return manager
}

// lazy returns *slot, starting it with start on first call. Callers hold m.mu.
func lazy[T any](t *testing.T, slot **T, start func(*testing.T) *T) *T {
	t.Helper()
	if *slot == nil {
		*slot = start(t)
	}
	return *slot
}

func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	return lazy(t, &m.postgres, NewPostgresContainer)
}

func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	return lazy(t, &m.kafka, NewKafkaContainer)
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	return lazy(t, &m.redis, NewRedisContainer)
}
