package auditsink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedgate/internal/platform/kafka/producer"
	audit "deedgate/pkg/platform/audit"
)

type recordingProducer struct {
	msgs []*producer.Message
	err  error
}

func (p *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestAppend_PublishesJSONKeyedByRecordHash(t *testing.T) {
	rec := &recordingProducer{}
	store := New(rec, "deedgate.audit")
	event := audit.Event{
		Timestamp:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Actor:      "0xabc",
		Action:     string(audit.EventListingVerification),
		RecordHash: "ab12",
		Decision:   audit.DecisionRejected,
		Reason:     "duplicate_listing",
		RequestID:  "req-1",
	}

	require.NoError(t, store.Append(context.Background(), event))

	require.Len(t, rec.msgs, 1)
	msg := rec.msgs[0]
	assert.Equal(t, "deedgate.audit", msg.Topic)
	assert.Equal(t, []byte("ab12"), msg.Key)
	assert.Equal(t, "listing_verification", msg.Headers["action"])

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestAppend_FallsBackToActorKey(t *testing.T) {
	rec := &recordingProducer{}
	require.NoError(t, New(rec, "t").Append(context.Background(), audit.Event{Actor: "admin@example.com"}))
	assert.Equal(t, []byte("admin@example.com"), rec.msgs[0].Key)
}

func TestAppend_WrapsProducerError(t *testing.T) {
	boom := errors.New("broker down")
	err := New(&recordingProducer{err: boom}, "t").Append(context.Background(), audit.Event{})
	require.ErrorIs(t, err, boom)
}
