package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/ledger-service/internal/models"
)

var ErrNotFound = errors.New("not found")

type Transactions interface {
	List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error)
	// ListAllByUser returns every transaction of the user in insertion order.
	ListAllByUser(ctx context.Context, userID int64) ([]models.Transaction, error)
	GetByID(ctx context.Context, id int64) (models.Transaction, error)
	Create(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	// Update overwrites name, date, amount and type. UserID is left untouched.
	Update(ctx context.Context, id int64, tx models.Transaction) (models.Transaction, error)
	Delete(ctx context.Context, id int64) (models.Transaction, error)
	Count(ctx context.Context) (int64, error)
}

type UserStats interface {
	Record(ctx context.Context, userID int64, amount float64) (models.UserStats, error)
	Get(ctx context.Context, userID int64) (models.UserStats, error)
	SetCreditScore(ctx context.Context, userID int64, score int) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
