package ledger

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"deedgate/pkg/domain"
)

// RegistrationCache remembers record hashes the ledger has confirmed.
type RegistrationCache interface {
	Registered(ctx context.Context, hash domain.RecordHash) (bool, error)
	MarkRegistered(ctx context.Context, hash domain.RecordHash) error
}

// Cached serves positive isRegistered answers from a cache. Registration is
// append-only on the contract, so a positive answer never goes stale; negative
// answers are never cached and always reach the ledger.
type Cached struct {
	next    Ledger
	cache   RegistrationCache
	metrics *Metrics
	logger  *slog.Logger
}

type CachedOption func(*Cached)

func WithCacheMetrics(m *Metrics) CachedOption {
	return func(c *Cached) { c.metrics = m }
}

func WithCacheLogger(l *slog.Logger) CachedOption {
	return func(c *Cached) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCached(next Ledger, cache RegistrationCache, opts ...CachedOption) *Cached {
	if next == nil {
		panic("ledger.NewCached: next ledger is required")
	}
	if cache == nil {
		panic("ledger.NewCached: cache is required")
	}
	c := &Cached{next: next, cache: cache, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) IsRegistered(ctx context.Context, hash domain.RecordHash) (bool, error) {
	hit, err := c.cache.Registered(ctx, hash)
	if err != nil {
		c.logger.WarnContext(ctx, "ledger cache read failed", "record_hash", hash.Short(), "error", err)
	}
	if hit {
		c.metrics.IncCacheHit()
		return true, nil
	}
	c.metrics.IncCacheMiss()

	registered, err := c.next.IsRegistered(ctx, hash)
	if err != nil {
		return false, err
	}
	if registered {
		c.remember(ctx, hash)
	}
	return registered, nil
}

func (c *Cached) RegisterHash(ctx context.Context, hash domain.RecordHash) (Receipt, error) {
	receipt, err := c.next.RegisterHash(ctx, hash)
	if err != nil {
		return Receipt{}, err
	}
	c.remember(ctx, hash)
	return receipt, nil
}

func (c *Cached) CreateListing(ctx context.Context, id domain.ContractID, priceWei *big.Int) (Receipt, error) {
	return c.next.CreateListing(ctx, id, priceWei)
}

func (c *Cached) Listing(ctx context.Context, id domain.ContractID) (*Listing, error) {
	return c.next.Listing(ctx, id)
}

func (c *Cached) remember(ctx context.Context, hash domain.RecordHash) {
	if err := c.cache.MarkRegistered(ctx, hash); err != nil {
		c.logger.WarnContext(ctx, "ledger cache write failed", "record_hash", hash.Short(), "error", err)
	}
}

// RedisCache keeps confirmed registrations in Redis.
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisCache stores keys under prefix with the given ttl. A zero ttl keeps keys forever.
func NewRedisCache(client redis.Cmdable, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "deedgate:ledger:registered:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) Registered(ctx context.Context, hash domain.RecordHash) (bool, error) {
	err := r.client.Get(ctx, r.prefix+hash.String()).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisCache) MarkRegistered(ctx context.Context, hash domain.RecordHash) error {
	return r.client.Set(ctx, r.prefix+hash.String(), "1", r.ttl).Err()
}

var (
	_ Ledger            = (*Cached)(nil)
	_ RegistrationCache = (*RedisCache)(nil)
)
