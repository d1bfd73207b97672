package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
)

func TestDeclarationFacts(t *testing.T) {
	t.Run("owner joins first and last and trims the result only", func(t *testing.T) {
		d := Declaration{OwnerFirst: " Jane", OwnerLast: ""}
		assert.Equal(t, "Jane", d.Facts().Owner)

		d = Declaration{OwnerFirst: "Jane", OwnerLast: "Doe "}
		assert.Equal(t, "Jane Doe", d.Facts().Owner)
	})

	t.Run("owner trim drops a byte order mark and line separators", func(t *testing.T) {
		d := Declaration{OwnerFirst: "\uFEFFJane", OwnerLast: "Doe\u2028"}
		assert.Equal(t, "Jane Doe", d.OwnerName())

		d = Declaration{OwnerFirst: "\u0085Jane", OwnerLast: "Doe"}
		assert.Equal(t, "\u0085Jane Doe", d.OwnerName())
	})

	t.Run("other fields are copied verbatim", func(t *testing.T) {
		d := Declaration{Location: " austin ", Size: "1,450", PropertyType: PropertyTypeLand}
		f := d.Facts()
		assert.Equal(t, " austin ", f.Location)
		assert.Equal(t, "1,450", f.Size)
		assert.Equal(t, "Land", f.PropertyType)
	})
}

func TestPropertyType(t *testing.T) {
	assert.True(t, PropertyTypeApartment.IsValid())
	assert.False(t, PropertyType("Castle").IsValid())
	assert.False(t, PropertyType("").IsValid())
}

func TestNewVerifiedListing(t *testing.T) {
	hash := domain.RecordHash("ab")
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id := domain.ListingID(uuid.New())

	t.Run("defaults title and image and marks verified", func(t *testing.T) {
		l, err := NewVerifiedListing(id, hash, 123456789, ListingDisplay{City: "Austin"}, domain.WalletAddress{}, now)
		require.NoError(t, err)
		assert.Equal(t, "Untitled", l.Title)
		assert.Equal(t, DefaultListingImage, l.Image)
		assert.True(t, l.Verified)
		assert.Equal(t, ListingStatusForSale, l.Status)
		assert.False(t, l.IsSold())
	})

	t.Run("requires a contract id", func(t *testing.T) {
		_, err := NewVerifiedListing(id, hash, 0, ListingDisplay{}, domain.WalletAddress{}, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestNewRegistryEntry(t *testing.T) {
	now := time.Now()
	_, err := NewRegistryEntry("", "cd", 0, Declaration{}, domain.WalletAddress{}, "", "admin@example.com", now)
	require.Error(t, err)

	e, err := NewRegistryEntry("ab", "cd", 0, Declaration{}, domain.WalletAddress{}, "", "admin@example.com", now)
	require.NoError(t, err)
	assert.False(t, e.HasContract())
}

func TestNewPurchase(t *testing.T) {
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	buyer, err := domain.ParseWalletAddress("0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	tx, err := domain.ParseTxHash("0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060")
	require.NoError(t, err)
	listing := func() *ListingEntry {
		return &ListingEntry{RecordHash: "ab", ContractID: 42, Title: "Lakeview Cottage", City: "Austin", PriceUSD: 250000, Beds: 3}
	}

	t.Run("snapshots the listing", func(t *testing.T) {
		p, err := NewPurchase(domain.NewPurchaseID(), listing(), buyer, tx, now)
		require.NoError(t, err)
		assert.Equal(t, domain.ContractID(42), p.ContractID)
		assert.Equal(t, "Lakeview Cottage", p.Title)
		assert.InDelta(t, 250000, p.PriceUSD, 0)
		assert.True(t, p.SameSale(&Purchase{BuyerWallet: buyer, TxHash: tx}))
		assert.False(t, p.SameSale(&Purchase{BuyerWallet: buyer}))
	})

	invalid := map[string]func() (*Purchase, error){
		"no listing": func() (*Purchase, error) { return NewPurchase(domain.NewPurchaseID(), nil, buyer, tx, now) },
		"off-chain listing": func() (*Purchase, error) {
			l := listing()
			l.ContractID = 0
			return NewPurchase(domain.NewPurchaseID(), l, buyer, tx, now)
		},
		"no buyer": func() (*Purchase, error) {
			return NewPurchase(domain.NewPurchaseID(), listing(), domain.WalletAddress{}, tx, now)
		},
		"no transaction": func() (*Purchase, error) {
			return NewPurchase(domain.NewPurchaseID(), listing(), buyer, domain.TxHash{}, now)
		},
	}
	for name, build := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := build()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}
