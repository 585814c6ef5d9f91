package models

// AnalyticsSnapshot is the derived per-user aggregate served by the
// analytics endpoint. Day is a YYYY-MM-DD calendar date, empty when the
// snapshot was computed from no transactions.
type AnalyticsSnapshot struct {
	AverageTransactionValue float64 `json:"average_transaction_value"`
	DayWithMostTransactions string  `json:"day_with_most_transactions"`
	TotalTransactionCount   int     `json:"total_transaction_count"`
}
