// Package redis opens the shared Redis connection used by the ledger cache and
// the rate limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"deedgate/internal/platform/config"
)

// Client embeds the go-redis client, so callers pass c.Client wherever a
// redis.Cmdable or redis.UniversalClient is expected.
type Client struct {
	*redis.Client
}

// New dials Redis and pings it once. An empty URL means Redis is not configured
// and yields a nil client.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout+time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{Client: client}, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RegisterMetrics exposes connection pool statistics on reg. Values are read
// from the pool at scrape time.
func (c *Client) RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(poolCollector{client: c.Client})
}

var (
	poolHitsDesc     = prometheus.NewDesc("deedgate_redis_pool_hits_total", "Connections found idle in the pool", nil, nil)
	poolMissesDesc   = prometheus.NewDesc("deedgate_redis_pool_misses_total", "Connections that had to be dialed", nil, nil)
	poolTimeoutsDesc = prometheus.NewDesc("deedgate_redis_pool_timeouts_total", "Waits for a connection that timed out", nil, nil)
	poolStaleDesc    = prometheus.NewDesc("deedgate_redis_pool_stale_conns_total", "Stale connections removed from the pool", nil, nil)
	poolTotalDesc    = prometheus.NewDesc("deedgate_redis_pool_total_conns", "Connections in the pool", nil, nil)
	poolIdleDesc     = prometheus.NewDesc("deedgate_redis_pool_idle_conns", "Idle connections in the pool", nil, nil)
)

type poolCollector struct {
	client *redis.Client
}

func (poolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{poolHitsDesc, poolMissesDesc, poolTimeoutsDesc, poolStaleDesc, poolTotalDesc, poolIdleDesc} {
		ch <- d
	}
}

func (p poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.client.PoolStats()
	ch <- prometheus.MustNewConstMetric(poolHitsDesc, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(poolMissesDesc, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(poolTimeoutsDesc, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(poolStaleDesc, prometheus.CounterValue, float64(s.StaleConns))
	ch <- prometheus.MustNewConstMetric(poolTotalDesc, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(poolIdleDesc, prometheus.GaugeValue, float64(s.IdleConns))
}
