package effects

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/ledger-service/internal/models"
	"github.com/baharkarakas/ledger-service/internal/repository/memory"
)

type mockHook struct{ mock.Mock }

func (m *mockHook) Name() string { return m.Called().String(0) }

func (m *mockHook) Run(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type refusingQueue struct{}

func (refusingQueue) Submit(func()) bool { return false }

func TestDispatcher_RunsHooksInOrderAndSwallowsErrors(t *testing.T) {
	var order []string
	first, second := new(mockHook), new(mockHook)
	first.On("Name").Return("first").Maybe()
	first.On("Run", mock.Anything, int64(9)).Return(errors.New("boom")).Run(func(mock.Arguments) { order = append(order, "first") })
	second.On("Name").Return("second").Maybe()
	second.On("Run", mock.Anything, int64(9)).Return(nil).Run(func(mock.Arguments) { order = append(order, "second") })

	d := NewDispatcher(Inline{}, nil, 0, first, second)
	assert.True(t, d.Dispatch(9))

	assert.Equal(t, []string{"first", "second"}, order)
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestDispatcher_HookContextHasDeadline(t *testing.T) {
	h := new(mockHook)
	h.On("Name").Return("h").Maybe()
	h.On("Run", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), int64(1)).Return(nil)

	NewDispatcher(Inline{}, nil, 0, h).Dispatch(1)
	h.AssertExpectations(t)
}

func TestDispatcher_QueueRefused(t *testing.T) {
	h := new(mockHook)
	d := NewDispatcher(refusingQueue{}, nil, 0, h)
	assert.False(t, d.Dispatch(1))
	h.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func createTxn(t *testing.T, repos memory.Repositories, uid int64, amount float64) models.Transaction {
	t.Helper()
	tx, err := repos.Transactions.Create(context.Background(), models.Transaction{
		UserID: uid, FullName: "enc", TransactionAmount: amount, TransactionType: models.TxnCredit,
	})
	require.NoError(t, err)
	return tx
}

func TestStatsAndCreditScore(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()
	stats := NewStatsUpdater(repos.Transactions, repos.UserStats)
	scorer := NewCreditScorer(repos.Transactions, repos.UserStats, repos.AuditLogs)

	a := createTxn(t, repos, 5, 1000)
	b := createTxn(t, repos, 5, 250)
	for _, id := range []int64{a.ID, b.ID} {
		require.NoError(t, stats.Run(ctx, id))
		require.NoError(t, scorer.Run(ctx, id))
	}

	st, err := repos.UserStats.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TransactionCount)
	assert.InDelta(t, 1250, st.TotalAmount, 1e-9)
	assert.Equal(t, 300+20+12, st.CreditScore)

	logs := repos.AuditLogs.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "credit_score_recalculated", logs[1].Action)
	assert.Equal(t, int64(5), *logs[1].EntityID)
}

func TestStatsUpdater_MissingTransaction(t *testing.T) {
	repos := memory.NewRepositories()
	err := NewStatsUpdater(repos.Transactions, repos.UserStats).Run(context.Background(), 404)
	assert.Error(t, err)
}

func TestScore_Capped(t *testing.T) {
	assert.Equal(t, 300, Score(models.UserStats{}))
	assert.Equal(t, 850, Score(models.UserStats{TransactionCount: 1000, TotalAmount: 1e9}))
}

func TestNotifier_PostsSignedEvent(t *testing.T) {
	var (
		gotBody []byte
		gotSig  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	repos := memory.NewRepositories()
	tx := createTxn(t, repos, 3, 10)

	n := NewNotifier(repos.Transactions, srv.URL, "s3cret", nil)
	require.NoError(t, n.Run(context.Background(), tx.ID))

	var ev map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &ev))
	assert.Equal(t, "transaction.created", ev["event"])
	assert.EqualValues(t, tx.ID, ev["transaction_id"])
	assert.EqualValues(t, 3, ev["user_id"])
	assert.Equal(t, Sign([]byte("s3cret"), gotBody), gotSig)
}

func TestNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	repos := memory.NewRepositories()
	tx := createTxn(t, repos, 3, 10)
	err := NewNotifier(repos.Transactions, srv.URL, "", nil).Run(context.Background(), tx.ID)
	assert.Error(t, err)
}

func TestNotifier_NoURLIsNoop(t *testing.T) {
	repos := memory.NewRepositories()
	assert.NoError(t, NewNotifier(repos.Transactions, "", "", nil).Run(context.Background(), 1))
}
