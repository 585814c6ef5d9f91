package effects

import (
	"context"
	"fmt"
	"math"

	"github.com/baharkarakas/ledger-service/internal/models"
	"github.com/baharkarakas/ledger-service/internal/repository"
)

const (
	minScore = 300
	maxScore = 850
)

type CreditScorer struct {
	txns  repository.Transactions
	stats repository.UserStats
	audit repository.AuditLogs
}

func NewCreditScorer(t repository.Transactions, s repository.UserStats, a repository.AuditLogs) *CreditScorer {
	return &CreditScorer{txns: t, stats: s, audit: a}
}

func (*CreditScorer) Name() string { return "recalculate-credit-score" }

// Score maps activity onto the 300..850 range: ten points per transaction
// (capped at 300) plus one point per 100 of volume (capped at 250).
func Score(st models.UserStats) int {
	activity := math.Min(float64(st.TransactionCount)*10, 300)
	volume := math.Min(math.Floor(st.TotalAmount/100), 250)
	s := minScore + int(activity) + int(volume)
	if s > maxScore {
		s = maxScore
	}
	return s
}

func (c *CreditScorer) Run(ctx context.Context, txnID int64) error {
	tx, err := c.txns.GetByID(ctx, txnID)
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", txnID, err)
	}
	st, err := c.stats.Get(ctx, tx.UserID)
	if err != nil {
		return fmt.Errorf("load stats for user %d: %w", tx.UserID, err)
	}

	score := Score(st)
	if score == st.CreditScore {
		return nil
	}
	if err := c.stats.SetCreditScore(ctx, tx.UserID, score); err != nil {
		return fmt.Errorf("store credit score: %w", err)
	}

	uid := tx.UserID
	return c.audit.Create(ctx, models.AuditLog{
		EntityType: "user",
		EntityID:   &uid,
		Action:     "credit_score_recalculated",
		Details: map[string]any{
			"previous":       st.CreditScore,
			"score":          score,
			"transaction_id": txnID,
		},
	})
}
