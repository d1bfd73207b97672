package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"deedgate/pkg/requestcontext"
)

// mockEmitter is a test double for the Emitter interface.
type mockEmitter struct {
	events    []Event
	shouldErr bool
}

func (m *mockEmitter) Emit(_ context.Context, event Event) error {
	if m.shouldErr {
		return errors.New("emit failed")
	}
	m.events = append(m.events, event)
	return nil
}

// LoggerSuite tests the audit Logger helper.
//
// Justification: the Logger enriches events from context and swallows emit
// failures; both paths are invisible from the HTTP surface.
type LoggerSuite struct {
	suite.Suite
	emitter *mockEmitter
	logger  *Logger
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) SetupTest() {
	s.emitter = &mockEmitter{}
	s.logger = NewLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), s.emitter)
}

func (s *LoggerSuite) TestRecordEnrichesFromContext() {
	now := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(context.Background(), "req-12345")
	ctx = requestcontext.WithTime(ctx, now)

	s.logger.Record(ctx, Event{Action: string(EventListingVerification), RecordHash: "ab"})

	s.Require().Len(s.emitter.events, 1)
	s.Equal("req-12345", s.emitter.events[0].RequestID)
	s.Equal(now, s.emitter.events[0].Timestamp)
}

func (s *LoggerSuite) TestRecordKeepsExplicitValues() {
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(context.Background(), "from-ctx")

	s.logger.Record(ctx, Event{Action: "x", RequestID: "explicit", Timestamp: ts})

	s.Require().Len(s.emitter.events, 1)
	s.Equal("explicit", s.emitter.events[0].RequestID)
	s.Equal(ts, s.emitter.events[0].Timestamp)
}

func (s *LoggerSuite) TestRecordSwallowsEmitError() {
	s.emitter.shouldErr = true
	s.NotPanics(func() {
		s.logger.Record(context.Background(), Event{Action: "x"})
	})
	s.Empty(s.emitter.events)
}

func (s *LoggerSuite) TestNilCollaborators() {
	s.NotPanics(func() {
		NewLogger(nil, nil).Record(context.Background(), Event{Action: "x"})
		var nilLogger *Logger
		nilLogger.Record(context.Background(), Event{Action: "x"})
	})

	emitter := &mockEmitter{}
	NewLogger(nil, emitter).Record(context.Background(), Event{Action: "x"})
	s.Len(emitter.events, 1)
}
