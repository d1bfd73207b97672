package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
	"deedgate/pkg/testutil"
)

var (
	buyerA, _ = domain.ParseWalletAddress("0x8ba1f109551bd432803012645ac136ddd64dba72")
	buyerB, _ = domain.ParseWalletAddress("0x0000000000000000000000000000000000000001")
)

func txHash(b byte) domain.TxHash {
	var h domain.TxHash
	h[31] = b
	return h
}

func newPurchase(hash string, buyer domain.WalletAddress, tx domain.TxHash, createdAt time.Time) *models.Purchase {
	return &models.Purchase{
		ID:          domain.NewPurchaseID(),
		RecordHash:  domain.RecordHash(hash),
		ContractID:  42,
		BuyerWallet: buyer,
		TxHash:      tx,
		Title:       "Lakeview Cottage",
		City:        "Austin",
		CreatedAt:   createdAt,
	}
}

func TestCreate_Success(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newPurchase("h1", buyerA, txHash(1), time.Now())))

	found, err := store.FindByRecordHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "Lakeview Cottage", found.Title)
	assert.Equal(t, txHash(1), found.TxHash)
}

func TestCreate_ListingSellsOnce(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newPurchase("h1", buyerA, txHash(1), time.Now())))
	err := store.Create(ctx, newPurchase("h1", buyerB, txHash(2), time.Now()))
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

func TestCreate_TransactionPaysOnce(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newPurchase("h1", buyerA, txHash(1), time.Now())))
	err := store.Create(ctx, newPurchase("h2", buyerA, txHash(1), time.Now()))
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)

	_, err = store.FindByRecordHash(ctx, "h2")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestCreate_ConcurrentBuyersYieldOnePurchase(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	res := testutil.RunConcurrent(20, func(i int) error {
		return store.Create(ctx, newPurchase("race", buyerA, txHash(byte(i+1)), time.Now()))
	})

	assert.Equal(t, int32(1), res.Successes)
	assert.Equal(t, int32(19), res.Conflicts)
	assert.Zero(t, res.Errors)
}

func TestListByBuyer(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, newPurchase("a-old", buyerA, txHash(1), base)))
	require.NoError(t, store.Create(ctx, newPurchase("a-new", buyerA, txHash(2), base.Add(time.Hour))))
	require.NoError(t, store.Create(ctx, newPurchase("b", buyerB, txHash(3), base)))

	mine, err := store.ListByBuyer(ctx, buyerA)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, domain.RecordHash("a-new"), mine[0].RecordHash)

	none, err := store.ListByBuyer(ctx, domain.WalletAddress{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
