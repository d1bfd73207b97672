//go:build integration

package registry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
	"deedgate/pkg/testutil"
	"deedgate/pkg/testutil/containers"
)

type PostgresRegistrySuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresRegistrySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRegistrySuite))
}

func (s *PostgresRegistrySuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresRegistrySuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "registry_entries"))
}

func pgEntry(hashChar string, createdAt time.Time) *models.RegistryEntry {
	wallet, _ := domain.ParseWalletAddress("0x8ba1f109551bd432803012645ac136ddd64dba72")
	return &models.RegistryEntry{
		RecordHash:  domain.RecordHash(strings.Repeat(hashChar, 64)),
		ContentHash: domain.ContentHash(strings.Repeat("c", 64)),
		ContractID:  123456789,
		Declaration: models.Declaration{
			OwnerFirst:    "Jane",
			OwnerLast:     "Doe",
			OwnerID:       "ID-778812",
			PropertyTitle: "Lakeview Cottage",
			PropertyType:  models.PropertyTypeResidentialHouse,
			Location:      "Austin",
			Size:          "1450",
			Beds:          "3",
			Baths:         "2",
			Year:          "1998",
		},
		Wallet:       wallet,
		Contact:      "jane@example.com",
		RegisteredBy: "admin@example.com",
		CreatedAt:    createdAt,
	}
}

func (s *PostgresRegistrySuite) TestRoundTrip() {
	ctx := context.Background()
	created := time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)
	entry := pgEntry("a", created)
	s.Require().NoError(s.store.Create(ctx, entry))

	found, err := s.store.FindByHash(ctx, entry.RecordHash)
	s.Require().NoError(err)
	s.Equal(entry.Declaration, found.Declaration)
	s.Equal(entry.ContentHash, found.ContentHash)
	s.Equal(entry.ContractID, found.ContractID)
	s.True(entry.Wallet.Equal(found.Wallet))
	s.Equal("jane@example.com", found.Contact)
	s.True(created.Equal(found.CreatedAt))
}

func (s *PostgresRegistrySuite) TestZeroWalletAndContractSurvive() {
	ctx := context.Background()
	entry := pgEntry("b", time.Now().UTC().Truncate(time.Microsecond))
	entry.Wallet = domain.WalletAddress{}
	entry.ContractID = 0
	s.Require().NoError(s.store.Create(ctx, entry))

	found, err := s.store.FindByHash(ctx, entry.RecordHash)
	s.Require().NoError(err)
	s.True(found.Wallet.IsZero())
	s.False(found.HasContract())
}

func (s *PostgresRegistrySuite) TestCreateIsWriteOnce() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, pgEntry("a", time.Now())))

	second := pgEntry("a", time.Now())
	second.Declaration.OwnerFirst = "Mallory"
	err := s.store.Create(ctx, second)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	found, err := s.store.FindByHash(ctx, second.RecordHash)
	s.Require().NoError(err)
	s.Equal("Jane", found.Declaration.OwnerFirst)
}

func (s *PostgresRegistrySuite) TestConcurrentCreateSameHash() {
	ctx := context.Background()
	res := testutil.RunConcurrent(10, func(int) error {
		return s.store.Create(ctx, pgEntry("d", time.Now()))
	})
	s.Equal(int32(1), res.Successes)
	s.Equal(int32(9), res.Conflicts)
}

func (s *PostgresRegistrySuite) TestNotFoundListAndCount() {
	ctx := context.Background()
	_, err := s.store.FindByHash(ctx, domain.RecordHash(strings.Repeat("f", 64)))
	s.ErrorIs(err, sentinel.ErrNotFound)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(ctx, pgEntry("1", base)))
	s.Require().NoError(s.store.Create(ctx, pgEntry("2", base.Add(time.Hour))))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(domain.RecordHash(strings.Repeat("2", 64)), all[0].RecordHash)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}
