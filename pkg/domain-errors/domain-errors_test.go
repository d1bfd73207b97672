package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorText() {
	s.Equal("this property is already listed", New(CodeDuplicateListing, "this property is already listed").Error())
	s.Equal("not_registered", (&Error{Code: CodeNotRegistered}).Error())
}

func (s *DomainErrorsSuite) TestUnwrapReachesCause() {
	cause := errors.New("dial tcp 10.0.0.7:8545: connection refused")
	err := &Error{Code: CodeUnavailable, Message: "verification backend unavailable; retry later", Err: cause}
	s.ErrorIs(err, cause)
	s.Nil((&Error{Code: CodeNotFound}).Unwrap())
}

func (s *DomainErrorsSuite) TestIsMatchesOnCode() {
	rejected := New(CodeIdentityMismatch, "identity or details mismatch")
	wrapped := fmt.Errorf("verify listing: %w", rejected)

	s.ErrorIs(wrapped, New(CodeIdentityMismatch, ""))
	s.NotErrorIs(wrapped, New(CodeDuplicateListing, ""))
	s.False(rejected.(*Error).Is(errors.New("identity or details mismatch")), "plain errors never match")
}

func (s *DomainErrorsSuite) TestWrapKeepsFirstCode() {
	s.Run("uncoded cause takes the given code", func() {
		err := Wrap(errors.New("pq: relation missing"), CodeInternal, "lookup failed")
		s.True(HasCode(err, CodeInternal))
		s.Equal("lookup failed", err.Error())
	})

	s.Run("coded cause keeps its code", func() {
		inner := New(CodeNotRegistered, "title hash not found on-chain; an admin must register it first")
		err := Wrap(fmt.Errorf("stage registry_lookup: %w", inner), CodeInternal, "verification failed")
		s.True(HasCode(err, CodeNotRegistered))
		s.False(HasCode(err, CodeInternal))
		s.Equal("verification failed", err.Error())
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeNotFound))
	s.False(HasCode(errors.New("boom"), CodeInternal))
	s.True(HasCode(fmt.Errorf("ctx: %w", New(CodeForbidden, "only admins can register hashes on-chain")), CodeForbidden))
}

func (s *DomainErrorsSuite) TestOnlyUnavailableIsRetryable() {
	s.True(IsRetryable(New(CodeUnavailable, "verification backend unavailable; retry later")))
	for _, code := range []Code{
		CodeNotRegistered,
		CodeRegistryInconsistent,
		CodeIdentityMismatch,
		CodeUnpublishedRegistration,
		CodeDuplicateListing,
		CodeInternal,
	} {
		s.False(IsRetryable(New(code, "")), code)
	}
	s.False(IsRetryable(errors.New("raw")))
}
