//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/ledger-service/internal/db"
	"github.com/baharkarakas/ledger-service/internal/models"
	"github.com/baharkarakas/ledger-service/internal/repository"
)

// Run with: DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
func newRepos(t *testing.T) (Repositories, *pgxpool.Pool) {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.RunMigrations(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE transactions, user_stats, audit_logs RESTART IDENTITY`)
	require.NoError(t, err)
	return NewRepositories(pool), pool
}

func TestTransactionsRepo_CRUD(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tx, err := repos.Transactions.Create(ctx, models.Transaction{
		UserID: 7, FullName: "enc", TransactionDate: day, TransactionAmount: 12.5, TransactionType: models.TxnCredit,
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.True(t, day.Equal(tx.TransactionDate))

	up, err := repos.Transactions.Update(ctx, tx.ID, models.Transaction{
		UserID: 99, FullName: "enc2", TransactionAmount: 3, TransactionType: models.TxnDebit,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), up.UserID)
	assert.Equal(t, "enc2", up.FullName)
	assert.Equal(t, models.TxnDebit, up.TransactionType)
	assert.False(t, up.TransactionDate.IsZero())

	del, err := repos.Transactions.Delete(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "enc2", del.FullName)

	_, err = repos.Transactions.Delete(ctx, tx.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Transactions.GetByID(ctx, tx.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Transactions.Update(ctx, tx.ID, models.Transaction{TransactionType: models.TxnCredit})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransactionsRepo_ListAndCount(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	for _, uid := range []int64{1, 2, 1, 1} {
		_, err := repos.Transactions.Create(ctx, models.Transaction{UserID: uid, FullName: "x", TransactionType: models.TxnCredit})
		require.NoError(t, err)
	}

	uid := int64(1)
	page, err := repos.Transactions.List(ctx, models.TransactionFilter{UserID: &uid, Skip: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Less(t, page[0].ID, page[1].ID)

	all, err := repos.Transactions.ListAllByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repos.Transactions.ListAllByUser(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := repos.Transactions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestTransactionsRepo_CheckConstraints(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	_, err := repos.Transactions.Create(ctx, models.Transaction{UserID: 1, TransactionAmount: -1, TransactionType: models.TxnCredit})
	assert.Error(t, err)
	_, err = repos.Transactions.Create(ctx, models.Transaction{UserID: 1, TransactionType: "refund"})
	assert.Error(t, err)
}

func TestUserStatsRepo_Upsert(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	_, err := repos.UserStats.Get(ctx, 5)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repos.UserStats.SetCreditScore(ctx, 5, 400), repository.ErrNotFound)

	_, err = repos.UserStats.Record(ctx, 5, 100)
	require.NoError(t, err)
	st, err := repos.UserStats.Record(ctx, 5, 50.5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TransactionCount)
	assert.InDelta(t, 150.5, st.TotalAmount, 1e-9)

	require.NoError(t, repos.UserStats.SetCreditScore(ctx, 5, 412))
	st, err = repos.UserStats.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 412, st.CreditScore)
}

func TestAuditLogsRepo_Create(t *testing.T) {
	repos, pool := newRepos(t)
	ctx := context.Background()

	uid := int64(5)
	require.NoError(t, repos.AuditLogs.Create(ctx, models.AuditLog{
		EntityType: "user", EntityID: &uid, Action: "credit_score_recalculated",
		Details: map[string]any{"score": 412},
	}))

	var score int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT (details->>'score')::int FROM audit_logs WHERE entity_id=$1`, uid,
	).Scan(&score))
	assert.Equal(t, 412, score)
}
