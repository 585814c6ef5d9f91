package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baharkarakas/ledger-service/internal/analytics"
	"github.com/baharkarakas/ledger-service/internal/cache"
	repo "github.com/baharkarakas/ledger-service/internal/repository"
)

// ErrNoTransactions is returned for users without any transaction. It wraps
// repository.ErrNotFound so the API maps it to 404.
var ErrNoTransactions = fmt.Errorf("no transactions for user: %w", repo.ErrNotFound)

type AnalyticsService struct {
	trx   repo.Transactions
	cache *cache.Ledger
	log   *slog.Logger
}

func NewAnalyticsService(t repo.Transactions, lc *cache.Ledger, log *slog.Logger) *AnalyticsService {
	if log == nil {
		log = slog.Default()
	}
	return &AnalyticsService{trx: t, cache: lc, log: log}
}

// Snapshot returns the serialized analytics document for userID. A cached
// document is returned byte for byte; writes made since it was cached are
// not reflected until it expires.
func (s *AnalyticsService) Snapshot(ctx context.Context, userID int64) ([]byte, error) {
	raw, err := s.cache.Snapshot(ctx, userID)
	switch {
	case err == nil:
		return raw, nil
	case !errors.Is(err, cache.ErrMiss):
		return nil, fmt.Errorf("read analytics cache: %w", err)
	}

	txns, err := s.trx.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load transactions for user %d: %w", userID, err)
	}
	if len(txns) == 0 {
		return nil, ErrNoTransactions
	}

	raw, err = json.Marshal(analytics.Compute(txns))
	if err != nil {
		return nil, err
	}
	if err := s.cache.PutSnapshot(ctx, userID, raw); err != nil {
		s.log.Warn("analytics cache write failed", "user_id", userID, "err", err)
	}
	return raw, nil
}
