package postgres

import (
	repo "github.com/baharkarakas/ledger-service/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Transactions repo.Transactions
	UserStats    repo.UserStats
	AuditLogs    repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Transactions: &transactionsRepo{pool},
		UserStats:    &userStatsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
	}
}
