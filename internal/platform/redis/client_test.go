package redis

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedgate/internal/platform/config"
)

func TestNewWithoutURLIsDisabled(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "://nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestPoolMetricsAreReadAtScrape(t *testing.T) {
	raw := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer raw.Close()

	reg := prometheus.NewRegistry()
	require.NoError(t, (&Client{Client: raw}).RegisterMetrics(reg))

	assert.Equal(t, 6, testutil.CollectAndCount(poolCollector{client: raw}))
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
}
