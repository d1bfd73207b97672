package purchases

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"deedgate/internal/ledger"
	"deedgate/internal/records/models"
	"deedgate/internal/records/store/listing"
	"deedgate/internal/records/store/purchase"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/audit"
	"deedgate/pkg/platform/audit/publisher"
	auditmemory "deedgate/pkg/platform/audit/store/memory"
	"deedgate/pkg/requestcontext"
)

var (
	fixedTime  = time.Date(2026, 5, 6, 9, 0, 0, 0, time.UTC)
	recordHash = domain.RecordHash(strings.Repeat("ab", 32))
	seller, _  = domain.ParseWalletAddress("0x8ba1f109551bd432803012645ac136ddd64dba72")
	buyer, _   = domain.ParseWalletAddress("0x0000000000000000000000000000000000000001")
	txA, _     = domain.ParseTxHash("0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060")
	txB, _     = domain.ParseTxHash("0x" + strings.Repeat("1f", 32))
)

const contractID domain.ContractID = 424242

type downLedger struct{}

func (downLedger) Listing(context.Context, domain.ContractID) (*ledger.Listing, error) {
	return nil, errors.New("dial tcp: connection refused")
}

type RecordSuite struct {
	suite.Suite
	ledger    *ledger.Memory
	listings  *listing.InMemory
	purchases *purchase.InMemory
	events    *auditmemory.InMemoryStore
	service   *Service
	ctx       context.Context
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordSuite))
}

func (s *RecordSuite) SetupTest() {
	s.ledger = ledger.NewMemory(seller)
	s.listings = listing.NewInMemory()
	s.purchases = purchase.NewInMemory()
	s.events = auditmemory.NewInMemoryStore()
	s.service = s.newService(s.ledger)
	s.ctx = requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), fixedTime), "req-7")

	_, err := s.ledger.CreateListing(context.Background(), contractID, ledger.DefaultPriceWei)
	s.Require().NoError(err)
	l, err := models.NewVerifiedListing(domain.NewListingID(), recordHash, contractID,
		models.ListingDisplay{Title: "Lakeview Cottage", City: "Austin", PriceUSD: 240000, Beds: 3, Baths: 2, Area: 1450},
		seller, fixedTime.Add(-time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.listings.CreateIfHashAvailable(context.Background(), l))
}

func (s *RecordSuite) newService(l Ledger) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(l, s.listings, s.purchases,
		WithLogger(logger),
		WithAuditLogger(audit.NewLogger(logger, publisher.NewPublisher(s.events))),
	)
}

func (s *RecordSuite) command(tx domain.TxHash) RecordCommand {
	return RecordCommand{Actor: "buyer@example.com", Buyer: buyer, RecordHash: recordHash, TxHash: tx}
}

func (s *RecordSuite) requireCode(err error, code dErrors.Code) {
	s.Require().Error(err)
	var de *dErrors.Error
	s.Require().ErrorAs(err, &de)
	s.Equal(code, de.Code)
}

func (s *RecordSuite) TestRecordsConfirmedSale() {
	s.Require().NoError(s.ledger.MarkSold(contractID))

	result, err := s.service.Record(s.ctx, s.command(txA))
	s.Require().NoError(err)
	s.False(result.Replayed)
	s.Equal(contractID, result.Purchase.ContractID)
	s.Equal("Lakeview Cottage", result.Purchase.Title)
	s.Equal(fixedTime, result.Purchase.CreatedAt)

	l, err := s.listings.FindByHash(context.Background(), recordHash)
	s.Require().NoError(err)
	s.True(l.IsSold())
	s.True(buyer.Equal(l.OwnerWallet))

	mine, err := s.service.ListMine(context.Background(), buyer)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(txA, mine[0].TxHash)

	events, err := s.events.ListByRecordHash(context.Background(), recordHash.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventPurchaseRecorded), events[0].Action)
	s.Equal("buyer@example.com", events[0].Actor)
	s.Equal("req-7", events[0].RequestID)
}

func (s *RecordSuite) TestUnsoldOnChainIsRejected() {
	_, err := s.service.Record(s.ctx, s.command(txA))
	s.requireCode(err, dErrors.CodeConflict)
	s.Contains(err.Error(), "not confirmed")

	l, err := s.listings.FindByHash(context.Background(), recordHash)
	s.Require().NoError(err)
	s.False(l.IsSold())
}

func (s *RecordSuite) TestReplayIsIdempotent() {
	s.Require().NoError(s.ledger.MarkSold(contractID))
	first, err := s.service.Record(s.ctx, s.command(txA))
	s.Require().NoError(err)

	again, err := s.service.Record(s.ctx, s.command(txA))
	s.Require().NoError(err)
	s.True(again.Replayed)
	s.Equal(first.Purchase.ID, again.Purchase.ID)

	events, err := s.events.ListByRecordHash(context.Background(), recordHash.String())
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *RecordSuite) TestSecondBuyerConflicts() {
	s.Require().NoError(s.ledger.MarkSold(contractID))
	_, err := s.service.Record(s.ctx, s.command(txA))
	s.Require().NoError(err)

	other, err := domain.ParseWalletAddress("0x0000000000000000000000000000000000000002")
	s.Require().NoError(err)
	cmd := s.command(txB)
	cmd.Buyer = other
	_, err = s.service.Record(s.ctx, cmd)
	s.requireCode(err, dErrors.CodeConflict)
}

func (s *RecordSuite) TestSellerCannotBuyOwnListing() {
	s.Require().NoError(s.ledger.MarkSold(contractID))
	cmd := s.command(txA)
	cmd.Buyer = seller
	_, err := s.service.Record(s.ctx, cmd)
	s.requireCode(err, dErrors.CodeValidation)
}

func (s *RecordSuite) TestUnknownListing() {
	cmd := s.command(txA)
	cmd.RecordHash = domain.RecordHash(strings.Repeat("cd", 32))
	_, err := s.service.Record(s.ctx, cmd)
	s.requireCode(err, dErrors.CodeNotFound)
}

func (s *RecordSuite) TestMissingBuyerOrTransaction() {
	cmd := s.command(txA)
	cmd.Buyer = domain.WalletAddress{}
	_, err := s.service.Record(s.ctx, cmd)
	s.requireCode(err, dErrors.CodeValidation)

	_, err = s.service.Record(s.ctx, s.command(domain.TxHash{}))
	s.requireCode(err, dErrors.CodeValidation)
}

func (s *RecordSuite) TestLedgerDownIsUnavailable() {
	_, err := s.newService(downLedger{}).Record(s.ctx, s.command(txA))
	s.requireCode(err, dErrors.CodeUnavailable)
	s.True(dErrors.IsRetryable(err))
}

func (s *RecordSuite) TestListMineRequiresWallet() {
	_, err := s.service.ListMine(context.Background(), domain.WalletAddress{})
	s.requireCode(err, dErrors.CodeValidation)
}
