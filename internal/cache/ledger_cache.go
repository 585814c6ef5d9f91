package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baharkarakas/ledger-service/internal/metrics"
	"github.com/baharkarakas/ledger-service/internal/models"
)

const DefaultTTL = time.Hour

// Ledger owns the key policy for the two read caches. Entries are never
// invalidated by writes; they simply expire after ttl.
type Ledger struct {
	store Store
	ttl   time.Duration
}

func NewLedger(store Store, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{store: store, ttl: ttl}
}

func AnalyticsKey(userID int64) string {
	return fmt.Sprintf("user_analytics:%d", userID)
}

func TransactionsKey(userID int64, skip, limit int) string {
	return fmt.Sprintf("user_transactions:%d:%d:%d", userID, skip, limit)
}

// Snapshot returns the cached, already serialized analytics document.
func (l *Ledger) Snapshot(ctx context.Context, userID int64) ([]byte, error) {
	return l.lookup(ctx, "analytics", AnalyticsKey(userID))
}

func (l *Ledger) PutSnapshot(ctx context.Context, userID int64, raw []byte) error {
	return l.store.Set(ctx, AnalyticsKey(userID), raw, l.ttl)
}

// UserTransactions returns a cached page as stored, i.e. with encrypted names.
func (l *Ledger) UserTransactions(ctx context.Context, userID int64, skip, limit int) ([]models.Transaction, error) {
	raw, err := l.lookup(ctx, "transactions", TransactionsKey(userID, skip, limit))
	if err != nil {
		return nil, err
	}
	var out []models.Transaction
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("cache: decode %s: %w", TransactionsKey(userID, skip, limit), err)
	}
	return out, nil
}

func (l *Ledger) PutUserTransactions(ctx context.Context, userID int64, skip, limit int, txns []models.Transaction) error {
	raw, err := json.Marshal(txns)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, TransactionsKey(userID, skip, limit), raw, l.ttl)
}

func (l *Ledger) lookup(ctx context.Context, name, key string) ([]byte, error) {
	raw, err := l.store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrMiss):
		metrics.CacheLookups.WithLabelValues(name, "miss").Inc()
	case err != nil:
		metrics.CacheLookups.WithLabelValues(name, "error").Inc()
	default:
		metrics.CacheLookups.WithLabelValues(name, "hit").Inc()
	}
	return raw, err
}
