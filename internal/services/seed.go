package services

import (
	"context"
	"fmt"

	"github.com/baharkarakas/ledger-service/internal/models"
)

var sampleTransactions = []models.TransactionInput{
	{UserID: 1, FullName: "John Doe", TransactionAmount: 100.0, TransactionType: models.TxnCredit},
	{UserID: 2, FullName: "Jane Smith", TransactionAmount: 250.5, TransactionType: models.TxnDebit},
	{UserID: 3, FullName: "Alice Johnson", TransactionAmount: 300.75, TransactionType: models.TxnCredit},
}

// Seed inserts the sample rows into an empty store and reports how many were
// written. It skips post-write hooks.
func (s *TransactionService) Seed(ctx context.Context) (int, error) {
	n, err := s.trx.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	if n > 0 {
		s.log.Info("store already has data, skipping seed", "count", n)
		return 0, nil
	}

	for i, in := range sampleTransactions {
		row, err := s.seal(in)
		if err != nil {
			return i, err
		}
		if _, err := s.trx.Create(ctx, row); err != nil {
			return i, fmt.Errorf("seed transaction %d: %w", i, err)
		}
	}
	s.log.Info("store seeded", "count", len(sampleTransactions))
	return len(sampleTransactions), nil
}
