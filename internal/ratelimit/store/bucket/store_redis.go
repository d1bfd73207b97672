package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"deedgate/internal/ratelimit/models"
)

// slidingWindowScript trims the window, admits the request when there is room and
// reports {allowed, count, resetAtMillis}. Running it as one script keeps the
// check-then-add atomic across replicas.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// RedisBucketStore shares sliding windows across replicas.
type RedisBucketStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisBucketStore(client redis.UniversalClient, prefix string) *RedisBucketStore {
	if prefix == "" {
		prefix = "deedgate:ratelimit:"
	}
	return &RedisBucketStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit models.Limit) (*models.RateLimitResult, error) {
	now := s.now()
	res, err := slidingWindowScript.Run(ctx, s.client,
		[]string{s.prefix + key},
		now.UnixMilli(), limit.Window.Milliseconds(), limit.Requests, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	allowed := res[0] == 1
	resetAt := time.UnixMilli(res[2])
	remaining := limit.Requests - int(res[1])
	if !allowed || remaining < 0 {
		remaining = 0
	}
	return &models.RateLimitResult{
		Allowed:    allowed,
		Limit:      limit.Requests,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: models.RetryAfterSeconds(allowed, now, resetAt),
	}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
