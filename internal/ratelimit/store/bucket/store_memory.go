package bucket

import (
	"context"
	"sync"
	"time"

	"deedgate/internal/ratelimit/models"
)

// InMemoryBucketStore implements sliding-window limiting inside one process.
// Replicas do not share state; configure Redis to use RedisBucketStore instead.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

// slidingWindow is the aggregate root for rate limit state.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

// tryConsume records one request if the window has room.
func (sw *slidingWindow) tryConsume(limit int, now time.Time) (allowed bool, remaining int, resetAt time.Time) {
	sw.cleanupExpired(now)

	if len(sw.timestamps) >= limit {
		return false, 0, sw.timestamps[0].Add(sw.window)
	}
	sw.timestamps = append(sw.timestamps, now)
	return true, limit - len(sw.timestamps), sw.timestamps[0].Add(sw.window)
}

func (sw *slidingWindow) cleanupExpired(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

type Option func(*InMemoryBucketStore)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryBucketStore) {
		s.now = now
	}
}

func NewInMemoryBucketStore(opts ...Option) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow checks if a request is allowed and records it when it is.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit models.Limit) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[key]
	if !ok {
		bucket = &slidingWindow{window: limit.Window}
		s.buckets[key] = bucket
	}
	now := s.now()
	allowed, remaining, resetAt := bucket.tryConsume(limit.Requests, now)

	return &models.RateLimitResult{
		Allowed:    allowed,
		Limit:      limit.Requests,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: models.RetryAfterSeconds(allowed, now, resetAt),
	}, nil
}

// Reset clears the rate limit counter for a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// Sweep drops windows with no live requests so idle clients do not pin memory.
func (s *InMemoryBucketStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, bucket := range s.buckets {
		bucket.cleanupExpired(now)
		if len(bucket.timestamps) == 0 {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *InMemoryBucketStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
