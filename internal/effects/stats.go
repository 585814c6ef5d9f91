package effects

import (
	"context"
	"fmt"

	"github.com/baharkarakas/ledger-service/internal/repository"
)

type StatsUpdater struct {
	txns  repository.Transactions
	stats repository.UserStats
}

func NewStatsUpdater(t repository.Transactions, s repository.UserStats) *StatsUpdater {
	return &StatsUpdater{txns: t, stats: s}
}

func (*StatsUpdater) Name() string { return "update-user-statistics" }

func (u *StatsUpdater) Run(ctx context.Context, txnID int64) error {
	tx, err := u.txns.GetByID(ctx, txnID)
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", txnID, err)
	}
	if _, err := u.stats.Record(ctx, tx.UserID, tx.TransactionAmount); err != nil {
		return fmt.Errorf("record stats for user %d: %w", tx.UserID, err)
	}
	return nil
}
