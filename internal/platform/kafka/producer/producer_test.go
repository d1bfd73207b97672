package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(Config{Brokers: []string{" ", ""}}, nil)
	require.Error(t, err)
}

func TestCleanBrokersSplitsAndTrims(t *testing.T) {
	got := cleanBrokers([]string{"a:9092, b:9092", "", " c:9092 "})
	assert.Equal(t, []string{"a:9092", "b:9092", "c:9092"}, got)
}

func TestToRecordOrdersHeaders(t *testing.T) {
	rec := toRecord(&Message{
		Topic:   "deedgate.audit",
		Key:     []byte("k"),
		Value:   []byte("v"),
		Headers: map[string]string{"request_id": "r-1", "action": "listing_created"},
	})

	require.Len(t, rec.Headers, 2)
	assert.Equal(t, "action", rec.Headers[0].Key)
	assert.Equal(t, "listing_created", string(rec.Headers[0].Value))
	assert.Equal(t, "request_id", rec.Headers[1].Key)
	assert.Equal(t, "deedgate.audit", rec.Topic)
}
