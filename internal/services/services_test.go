package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/ledger-service/internal/cache"
	"github.com/baharkarakas/ledger-service/internal/crypto"
	"github.com/baharkarakas/ledger-service/internal/models"
	"github.com/baharkarakas/ledger-service/internal/repository"
	"github.com/baharkarakas/ledger-service/internal/repository/memory"
)

type recordingDispatcher struct{ ids []int64 }

func (d *recordingDispatcher) Dispatch(id int64) bool {
	d.ids = append(d.ids, id)
	return true
}

type fixture struct {
	repos     memory.Repositories
	cipher    *crypto.FieldCipher
	fx        *recordingDispatcher
	txns      *TransactionService
	analytics *AnalyticsService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := cache.NewBadgerStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	c, err := crypto.NewFieldCipher("test-key")
	require.NoError(t, err)

	repos := memory.NewRepositories()
	lc := cache.NewLedger(store, time.Hour)
	fx := &recordingDispatcher{}
	return fixture{
		repos:     repos,
		cipher:    c,
		fx:        fx,
		txns:      NewTransactionService(repos.Transactions, c, lc, fx, nil),
		analytics: NewAnalyticsService(repos.Transactions, lc, nil),
	}
}

func input(uid int64, name string, amount float64, typ models.TransactionType, day string) models.TransactionInput {
	in := models.TransactionInput{UserID: uid, FullName: name, TransactionAmount: amount, TransactionType: typ}
	if day != "" {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			panic(err)
		}
		in.TransactionDate = d
	}
	return in
}

func TestCreate_EncryptsAtRestAndDispatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.txns.Create(ctx, input(1, "John Doe", 1000, models.TxnCredit, ""))
	require.NoError(t, err)
	assert.Equal(t, "John Doe", tx.FullName)
	assert.Equal(t, []int64{tx.ID}, f.fx.ids)

	stored, err := f.repos.Transactions.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "John Doe", stored.FullName)
	plain, err := f.cipher.Decrypt(stored.FullName)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", plain)

	got, err := f.txns.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got.FullName)
}

func TestGet_CorruptedNameSurfaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	row, err := f.repos.Transactions.Create(ctx, models.Transaction{UserID: 1, FullName: "garbage", TransactionType: models.TxnDebit})
	require.NoError(t, err)

	_, err = f.txns.Get(ctx, row.ID)
	assert.ErrorIs(t, err, crypto.ErrInvalidCiphertext)
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.txns.Create(ctx, input(4, "Old Name", 10, models.TxnCredit, ""))
	require.NoError(t, err)

	up, err := f.txns.Update(ctx, tx.ID, input(99, "New Name", 20, models.TxnDebit, "2024-05-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), up.UserID)
	assert.Equal(t, "New Name", up.FullName)
	assert.Equal(t, models.TxnDebit, up.TransactionType)

	del, err := f.txns.Delete(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", del.FullName)

	_, err = f.txns.Get(ctx, tx.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.txns.Update(ctx, tx.ID, input(4, "x", 1, models.TxnCredit, ""))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestList_UserPagesAreCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := int64(1)

	_, err := f.txns.Create(ctx, input(uid, "A", 1, models.TxnCredit, ""))
	require.NoError(t, err)

	filter := models.TransactionFilter{UserID: &uid, Limit: 10}
	first, err := f.txns.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "A", first[0].FullName)

	_, err = f.txns.Create(ctx, input(uid, "B", 2, models.TxnCredit, ""))
	require.NoError(t, err)

	second, err := f.txns.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, second, 1, "page is served from cache until it expires")

	all, err := f.txns.List(ctx, models.TransactionFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2, "unfiltered listing bypasses the cache")
	assert.Equal(t, "B", all[1].FullName)
}

func TestSnapshot_ComputesAndCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.analytics.Snapshot(ctx, 7)
	assert.ErrorIs(t, err, ErrNoTransactions)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.txns.Create(ctx, input(7, "A", 100, models.TxnCredit, "2024-03-02"))
	require.NoError(t, err)
	_, err = f.txns.Create(ctx, input(7, "A", 500, models.TxnDebit, "2024-03-01"))
	require.NoError(t, err)

	raw, err := f.analytics.Snapshot(ctx, 7)
	require.NoError(t, err)
	var snap models.AnalyticsSnapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.InDelta(t, 300.0, snap.AverageTransactionValue, 1e-9)
	assert.Equal(t, 2, snap.TotalTransactionCount)
	assert.Equal(t, "2024-03-01", snap.DayWithMostTransactions)

	_, err = f.txns.Create(ctx, input(7, "A", 900, models.TxnCredit, "2024-03-05"))
	require.NoError(t, err)

	again, err := f.analytics.Snapshot(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestSeed_OnlyIntoEmptyStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.txns.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, f.fx.ids)

	got, err := f.txns.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got.FullName)
	assert.InDelta(t, 250.5, got.TransactionAmount, 1e-9)

	n, err = f.txns.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
