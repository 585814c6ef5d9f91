package models

import "time"

// UserStats is maintained by background hooks only; request handlers never
// read it.
type UserStats struct {
	UserID           int64     `json:"user_id"`
	TransactionCount int64     `json:"transaction_count"`
	TotalAmount      float64   `json:"total_amount"`
	CreditScore      int       `json:"credit_score"`
	LastUpdatedAt    time.Time `json:"last_updated_at"`
}
