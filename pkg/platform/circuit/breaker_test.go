package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
	now time.Time
	b   *Breaker
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) SetupTest() {
	s.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.b = New("ledger",
		WithFailureThreshold(2),
		WithSuccessThreshold(2),
		WithCooldown(time.Second),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *BreakerSuite) TestOpensAfterThreshold() {
	open, change := s.b.RecordFailure()
	s.False(open)
	s.False(change.Opened)

	open, change = s.b.RecordFailure()
	s.True(open)
	s.True(change.Opened)
	s.Equal(StateOpen, s.b.State())
	s.Equal("open", s.b.State().String())
}

func (s *BreakerSuite) TestSuccessResetsFailureStreak() {
	s.b.RecordFailure()
	s.b.RecordSuccess()
	open, _ := s.b.RecordFailure()
	s.False(open)
}

func (s *BreakerSuite) TestAllowDuringCooldown() {
	s.True(s.b.Allow())
	s.b.RecordFailure()
	s.b.RecordFailure()

	s.False(s.b.Allow())

	s.now = s.now.Add(time.Second)
	s.True(s.b.Allow(), "probe allowed after cooldown")
}

func (s *BreakerSuite) TestClosesAfterSuccessfulProbes() {
	s.b.RecordFailure()
	s.b.RecordFailure()
	s.now = s.now.Add(2 * time.Second)

	primary, change := s.b.RecordSuccess()
	s.False(primary)
	s.False(change.Closed)

	primary, change = s.b.RecordSuccess()
	s.True(primary)
	s.True(change.Closed)
	s.Equal(StateClosed, s.b.State())
}

func (s *BreakerSuite) TestFailedProbeRestartsCooldown() {
	s.b.RecordFailure()
	s.b.RecordFailure()
	s.now = s.now.Add(time.Second)
	s.True(s.b.Allow())

	s.b.RecordFailure()
	s.False(s.b.Allow())
}

func (s *BreakerSuite) TestReset() {
	s.b.RecordFailure()
	s.b.RecordFailure()
	s.b.Reset()
	s.False(s.b.IsOpen())
	s.True(s.b.Allow())
}
