package models

import "time"

type TransactionType string

const (
	TxnCredit TransactionType = "credit"
	TxnDebit  TransactionType = "debit"
)

func (t TransactionType) Valid() bool {
	return t == TxnCredit || t == TxnDebit
}

// Transaction is a stored ledger record. FullName holds ciphertext when the
// value comes from the store and plaintext once a service has decrypted it.
type Transaction struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"user_id"`
	FullName          string          `json:"full_name"`
	TransactionDate   time.Time       `json:"transaction_date"`
	TransactionAmount float64         `json:"transaction_amount"`
	TransactionType   TransactionType `json:"transaction_type"`
}

// TransactionInput carries already validated fields for create and update.
// A zero TransactionDate means "now".
type TransactionInput struct {
	UserID            int64
	FullName          string
	TransactionDate   time.Time
	TransactionAmount float64
	TransactionType   TransactionType
}

type TransactionFilter struct {
	UserID *int64
	Skip   int
	Limit  int
}
