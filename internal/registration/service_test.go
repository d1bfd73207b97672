package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"deedgate/internal/documents/archive"
	"deedgate/internal/fingerprint"
	"deedgate/internal/ledger"
	"deedgate/internal/records/models"
	"deedgate/internal/records/store/registry"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/audit"
	"deedgate/pkg/platform/audit/publisher"
	auditmemory "deedgate/pkg/platform/audit/store/memory"
	"deedgate/pkg/requestcontext"
)

var (
	deed      = []byte("%PDF-1.7 deed of title #7")
	fixedTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	admin     = Capability{Admin: true, Actor: "admin@example.com"}
)

func declaration() models.Declaration {
	return models.Declaration{
		OwnerFirst:    "Jane",
		OwnerLast:     "Doe",
		OwnerID:       "ID-99812",
		PropertyTitle: "Lakeside Cottage",
		PropertyType:  models.PropertyTypeResidentialHouse,
		Location:      "Lake Road 4, Springfield",
		Size:          "120",
		Beds:          "3",
		Baths:         "2",
		Year:          "1998",
	}
}

func command() RegisterCommand {
	return RegisterCommand{
		Document:    deed,
		ContentType: "application/pdf",
		Declaration: declaration(),
		Contact:     "jane@example.com",
	}
}

// takenLedger rejects the first n createListing calls as if the slot were taken.
type takenLedger struct {
	*ledger.Memory
	taken int
	calls []domain.ContractID
}

func (l *takenLedger) CreateListing(ctx context.Context, id domain.ContractID, price *big.Int) (ledger.Receipt, error) {
	l.calls = append(l.calls, id)
	if len(l.calls) <= l.taken {
		return ledger.Receipt{}, fmt.Errorf("listing %s: %w", id, sentinel.ErrAlreadyUsed)
	}
	return l.Memory.CreateListing(ctx, id, price)
}

type failingLedger struct {
	*ledger.Memory
	err error
}

func (l failingLedger) RegisterHash(context.Context, domain.RecordHash) (ledger.Receipt, error) {
	return ledger.Receipt{}, l.err
}

type RegisterSuite struct {
	suite.Suite
	ledger   *ledger.Memory
	registry *registry.InMemory
	archive  *archive.InMemory
	events   *auditmemory.InMemoryStore
	metrics  *Metrics
	service  *Service
	ctx      context.Context
}

func TestRegisterSuite(t *testing.T) {
	suite.Run(t, new(RegisterSuite))
}

func (s *RegisterSuite) SetupTest() {
	s.ledger = ledger.NewMemory(domain.WalletAddress{})
	s.registry = registry.NewInMemory()
	s.archive = archive.NewInMemory()
	s.events = auditmemory.NewInMemoryStore()
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.service = s.newService(s.ledger)
	s.ctx = requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), fixedTime), "req-9")
}

func (s *RegisterSuite) newService(l Ledger) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(l, s.registry, s.archive,
		WithLogger(logger),
		WithMetrics(s.metrics),
		WithAuditLogger(audit.NewLogger(logger, publisher.NewPublisher(s.events))),
		WithContractIDs(NewContractIDs(func() time.Time { return fixedTime })),
	)
}

func (s *RegisterSuite) requireCode(err error, code dErrors.Code) {
	s.Require().Error(err)
	var de *dErrors.Error
	s.Require().ErrorAs(err, &de)
	s.Equal(code, de.Code)
}

func (s *RegisterSuite) TestRegistersAndPublishes() {
	result, err := s.service.Register(s.ctx, admin, command())
	s.Require().NoError(err)

	want := fingerprint.Build(deed, declaration().Facts())
	s.Equal(want.RecordHash, result.RecordHash)
	s.Equal(want.ContentHash, result.ContentHash)
	s.Equal(want.MetadataHash, result.MetadataHash)
	s.False(result.AlreadyOnLedger)
	s.NotEmpty(result.RegisterTx)
	s.NotEmpty(result.ListingTx)
	s.Equal(domain.ContractID(fixedTime.UnixMilli()%contractIDModulus), result.ContractID)

	registered, err := s.ledger.IsRegistered(context.Background(), result.RecordHash)
	s.Require().NoError(err)
	s.True(registered)

	onChain, err := s.ledger.Listing(context.Background(), result.ContractID)
	s.Require().NoError(err)
	s.True(onChain.Exists)
	s.Equal(0, onChain.PriceWei.Cmp(ledger.DefaultPriceWei))

	entry, err := s.registry.FindByHash(context.Background(), result.RecordHash)
	s.Require().NoError(err)
	s.Equal(result.ContractID, entry.ContractID)
	s.Equal("admin@example.com", entry.RegisteredBy)
	s.Equal(fixedTime, entry.CreatedAt)

	stored, err := s.archive.Get(context.Background(), result.ContentHash)
	s.Require().NoError(err)
	s.Equal(deed, stored.Data)
	s.Equal("application/pdf", stored.ContentType)

	events, err := s.events.ListByRecordHash(context.Background(), result.RecordHash.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventRegistryCreated), events[0].Action)
	s.Equal("req-9", events[0].RequestID)

	s.InDelta(1, promtest.ToFloat64(s.metrics.Registrations.WithLabelValues(resultRegistered)), 0)
}

func (s *RegisterSuite) TestSkipPublishLeavesContractIDZero() {
	cmd := command()
	cmd.SkipPublish = true

	result, err := s.service.Register(s.ctx, admin, cmd)
	s.Require().NoError(err)

	s.True(result.ContractID.IsZero())
	s.Empty(result.ListingTx)
	s.False(result.Entry.HasContract())
}

func (s *RegisterSuite) TestPriceOverride() {
	cmd := command()
	cmd.PriceWei = big.NewInt(5_000)

	result, err := s.service.Register(s.ctx, admin, cmd)
	s.Require().NoError(err)

	onChain, err := s.ledger.Listing(context.Background(), result.ContractID)
	s.Require().NoError(err)
	s.Equal(int64(5_000), onChain.PriceWei.Int64())
}

func (s *RegisterSuite) TestNonAdminIsForbidden() {
	result, err := s.service.Register(s.ctx, Capability{Actor: "user@example.com"}, command())

	s.Nil(result)
	s.requireCode(err, dErrors.CodeForbidden)
	n, countErr := s.registry.Count(context.Background())
	s.Require().NoError(countErr)
	s.Zero(n)
	s.InDelta(1, promtest.ToFloat64(s.metrics.Registrations.WithLabelValues(resultForbidden)), 0)
}

func (s *RegisterSuite) TestSecondRegistrationConflicts() {
	_, err := s.service.Register(s.ctx, admin, command())
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, admin, command())
	s.requireCode(err, dErrors.CodeConflict)
	s.InDelta(1, promtest.ToFloat64(s.metrics.Registrations.WithLabelValues(resultConflict)), 0)
}

func (s *RegisterSuite) TestHashAlreadyOnLedgerIsReused() {
	hash := fingerprint.Build(deed, declaration().Facts()).RecordHash
	_, err := s.ledger.RegisterHash(context.Background(), hash)
	s.Require().NoError(err)

	result, err := s.service.Register(s.ctx, admin, command())
	s.Require().NoError(err)

	s.True(result.AlreadyOnLedger)
	s.Empty(result.RegisterTx)
	s.NotNil(result.Entry)
}

func (s *RegisterSuite) TestTakenContractIDIsRetried() {
	taken := &takenLedger{Memory: s.ledger, taken: 2}
	service := s.newService(taken)

	result, err := service.Register(s.ctx, admin, command())
	s.Require().NoError(err)

	s.Require().Len(taken.calls, 3)
	s.Equal(taken.calls[2], result.ContractID)
	s.Less(taken.calls[0], taken.calls[1])
}

func (s *RegisterSuite) TestContractIDsExhausted() {
	taken := &takenLedger{Memory: s.ledger, taken: maxSlotAttempts}
	service := s.newService(taken)

	_, err := service.Register(s.ctx, admin, command())

	s.requireCode(err, dErrors.CodeConflict)
	s.Len(taken.calls, maxSlotAttempts)
	_, findErr := s.registry.FindByHash(context.Background(), fingerprint.Build(deed, declaration().Facts()).RecordHash)
	s.ErrorIs(findErr, sentinel.ErrNotFound)
}

func (s *RegisterSuite) TestLedgerFailures() {
	s.Run("transport failure is unavailable", func() {
		service := s.newService(failingLedger{Memory: s.ledger, err: fmt.Errorf("dial: %w", sentinel.ErrUnavailable)})
		_, err := service.Register(s.ctx, admin, command())
		s.requireCode(err, dErrors.CodeUnavailable)
		s.True(dErrors.IsRetryable(err))
	})

	s.Run("reverted transaction is a conflict", func() {
		service := s.newService(failingLedger{Memory: s.ledger, err: fmt.Errorf("execution reverted: %w", sentinel.ErrInvalidState)})
		_, err := service.Register(s.ctx, admin, command())
		s.requireCode(err, dErrors.CodeConflict)
		s.False(dErrors.IsRetryable(err))
	})

	s.Run("concurrent registration on ledger is tolerated", func() {
		service := s.newService(failingLedger{Memory: s.ledger, err: sentinel.ErrAlreadyUsed})
		result, err := service.Register(s.ctx, admin, command())
		s.Require().NoError(err)
		s.True(result.AlreadyOnLedger)
	})
}

func (s *RegisterSuite) TestNewPanicsOnMissingPorts() {
	s.Panics(func() { New(nil, s.registry, s.archive) })
	s.Panics(func() { New(s.ledger, nil, s.archive) })
	s.Panics(func() { New(s.ledger, s.registry, nil) })
}

func (s *RegisterSuite) TestErrorsKeepCause() {
	cause := errors.New("connection refused")
	err := unavailable("registry lookup", cause)
	s.ErrorIs(err, cause)
	s.Equal(msgUnavailable, err.Error())
}
