package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/ledger-service/internal/models"
	"github.com/baharkarakas/ledger-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txnColumns = `id, user_id, full_name, transaction_date, transaction_amount, transaction_type`

func scanTxn(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.FullName, &tx.TransactionDate, &tx.TransactionAmount, &tx.TransactionType)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, repository.ErrNotFound
	}
	return tx, err
}

func collectTxns(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if f.UserID != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+txnColumns+`
			   FROM transactions
			  WHERE user_id=$1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`,
			*f.UserID, f.Limit, f.Skip,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+txnColumns+`
			   FROM transactions
			  ORDER BY id
			  LIMIT $1 OFFSET $2`,
			f.Limit, f.Skip,
		)
	}
	if err != nil {
		return nil, err
	}
	return collectTxns(rows)
}

func (r *transactionsRepo) ListAllByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE user_id=$1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectTxns(rows)
}

func (r *transactionsRepo) GetByID(ctx context.Context, id int64) (models.Transaction, error) {
	return scanTxn(r.pool.QueryRow(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE id=$1`, id,
	))
}

func (r *transactionsRepo) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = time.Now()
	}
	return scanTxn(r.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, full_name, transaction_date, transaction_amount, transaction_type)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING `+txnColumns,
		tx.UserID, tx.FullName, tx.TransactionDate, tx.TransactionAmount, tx.TransactionType,
	))
}

func (r *transactionsRepo) Update(ctx context.Context, id int64, tx models.Transaction) (models.Transaction, error) {
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = time.Now()
	}
	return scanTxn(r.pool.QueryRow(ctx,
		`UPDATE transactions
		    SET full_name=$2, transaction_date=$3, transaction_amount=$4, transaction_type=$5
		  WHERE id=$1
		  RETURNING `+txnColumns,
		id, tx.FullName, tx.TransactionDate, tx.TransactionAmount, tx.TransactionType,
	))
}

func (r *transactionsRepo) Delete(ctx context.Context, id int64) (models.Transaction, error) {
	return scanTxn(r.pool.QueryRow(ctx,
		`DELETE FROM transactions WHERE id=$1 RETURNING `+txnColumns, id,
	))
}

func (r *transactionsRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions`).Scan(&n)
	return n, err
}
