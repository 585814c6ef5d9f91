package postgres

import (
	"context"
	"errors"

	"github.com/baharkarakas/ledger-service/internal/models"
	"github.com/baharkarakas/ledger-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userStatsRepo struct{ pool *pgxpool.Pool }

// Record adds one transaction of the given amount to the user's running totals,
// creating the row on first use.
func (r *userStatsRepo) Record(ctx context.Context, userID int64, amount float64) (models.UserStats, error) {
	var s models.UserStats
	err := r.pool.QueryRow(ctx,
		`INSERT INTO user_stats(user_id, transaction_count, total_amount, last_updated_at)
		 VALUES($1, 1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE
		    SET transaction_count = user_stats.transaction_count + 1,
		        total_amount      = user_stats.total_amount + EXCLUDED.total_amount,
		        last_updated_at   = now()
		 RETURNING user_id, transaction_count, total_amount, credit_score, last_updated_at`,
		userID, amount,
	).Scan(&s.UserID, &s.TransactionCount, &s.TotalAmount, &s.CreditScore, &s.LastUpdatedAt)
	return s, err
}

func (r *userStatsRepo) Get(ctx context.Context, userID int64) (models.UserStats, error) {
	var s models.UserStats
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, transaction_count, total_amount, credit_score, last_updated_at
		   FROM user_stats
		  WHERE user_id=$1`,
		userID,
	).Scan(&s.UserID, &s.TransactionCount, &s.TotalAmount, &s.CreditScore, &s.LastUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserStats{}, repository.ErrNotFound
	}
	return s, err
}

func (r *userStatsRepo) SetCreditScore(ctx context.Context, userID int64, score int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_stats SET credit_score=$2, last_updated_at=now() WHERE user_id=$1`,
		userID, score,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
