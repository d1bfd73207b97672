package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
)

func newEntry(hash string, createdAt time.Time) *models.RegistryEntry {
	return &models.RegistryEntry{
		RecordHash:  domain.RecordHash(hash),
		ContentHash: "cd",
		ContractID:  123456789,
		Declaration: models.Declaration{OwnerFirst: "Jane", OwnerLast: "Doe", Beds: "3"},
		CreatedAt:   createdAt,
	}
}

func TestCreate_Success(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newEntry("a1", time.Now())))

	found, err := store.FindByHash(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", found.Declaration.OwnerFirst)
	assert.Equal(t, domain.ContractID(123456789), found.ContractID)
}

func TestCreate_IsWriteOnce(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newEntry("a1", time.Now())))

	second := newEntry("a1", time.Now())
	second.Declaration.OwnerFirst = "Mallory"
	err := store.Create(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)

	found, err := store.FindByHash(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", found.Declaration.OwnerFirst)
}

func TestFindByHash_NotFound(t *testing.T) {
	_, err := NewInMemory().FindByHash(context.Background(), "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFindByHash_ReturnsCopy(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newEntry("a1", time.Now())))

	found, err := store.FindByHash(ctx, "a1")
	require.NoError(t, err)
	found.Declaration.OwnerFirst = "changed"

	again, err := store.FindByHash(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", again.Declaration.OwnerFirst)
}

func TestListAndCount(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, newEntry("old", base)))
	require.NoError(t, store.Create(ctx, newEntry("new", base.Add(time.Hour))))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.RecordHash("new"), list[0].RecordHash)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCreate_ConcurrentSameHash(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Create(ctx, newEntry("race", time.Now())); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}
