// Package analytics derives per-user statistics from a transaction set.
package analytics

import (
	"github.com/baharkarakas/ledger-service/internal/models"
)

const dayLayout = "2006-01-02"

// Compute is pure and total: an empty set yields the zero snapshot and it is
// up to the caller to decide what "no data" means.
func Compute(txns []models.Transaction) models.AnalyticsSnapshot {
	if len(txns) == 0 {
		return models.AnalyticsSnapshot{}
	}

	var sum float64
	perDay := make(map[string]int, len(txns))
	for _, tx := range txns {
		sum += tx.TransactionAmount
		perDay[tx.TransactionDate.UTC().Format(dayLayout)]++
	}

	// ties go to the earliest date; the layout sorts lexically
	var busiest string
	best := 0
	for day, n := range perDay {
		if n > best || (n == best && day < busiest) {
			busiest, best = day, n
		}
	}

	return models.AnalyticsSnapshot{
		AverageTransactionValue: sum / float64(len(txns)),
		DayWithMostTransactions: busiest,
		TotalTransactionCount:   len(txns),
	}
}
