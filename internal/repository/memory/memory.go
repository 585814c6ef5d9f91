// Package memory is a process-local store used for STORE_BACKEND=memory and
// in tests. It keeps insertion order so listings match the postgres store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baharkarakas/ledger-service/internal/models"
	"github.com/baharkarakas/ledger-service/internal/repository"
)

type Repositories struct {
	Transactions *Transactions
	UserStats    *UserStats
	AuditLogs    *AuditLogs
}

func NewRepositories() Repositories {
	return Repositories{
		Transactions: NewTransactions(),
		UserStats:    NewUserStats(),
		AuditLogs:    &AuditLogs{},
	}
}

type Transactions struct {
	mu     sync.RWMutex
	nextID int64
	rows   []models.Transaction
}

var _ repository.Transactions = (*Transactions)(nil)

func NewTransactions() *Transactions { return &Transactions{nextID: 1} }

func (s *Transactions) indexOf(id int64) int {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Transactions) List(_ context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Transaction{}
	skipped := 0
	for _, tx := range s.rows {
		if len(out) >= f.Limit {
			break
		}
		if f.UserID != nil && tx.UserID != *f.UserID {
			continue
		}
		if skipped < f.Skip {
			skipped++
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Transactions) ListAllByUser(_ context.Context, userID int64) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Transaction{}
	for _, tx := range s.rows {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Transactions) GetByID(_ context.Context, id int64) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Transaction{}, repository.ErrNotFound
	}
	return s.rows[i], nil
}

func (s *Transactions) Create(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = time.Now()
	}
	tx.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, tx)
	return tx, nil
}

func (s *Transactions) Update(_ context.Context, id int64, tx models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Transaction{}, repository.ErrNotFound
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = time.Now()
	}
	cur := &s.rows[i]
	cur.FullName = tx.FullName
	cur.TransactionDate = tx.TransactionDate
	cur.TransactionAmount = tx.TransactionAmount
	cur.TransactionType = tx.TransactionType
	return *cur, nil
}

func (s *Transactions) Delete(_ context.Context, id int64) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Transaction{}, repository.ErrNotFound
	}
	tx := s.rows[i]
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	return tx, nil
}

func (s *Transactions) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows)), nil
}

type UserStats struct {
	mu   sync.Mutex
	rows map[int64]models.UserStats
}

var _ repository.UserStats = (*UserStats)(nil)

func NewUserStats() *UserStats { return &UserStats{rows: map[int64]models.UserStats{}} }

func (s *UserStats) Record(_ context.Context, userID int64, amount float64) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.rows[userID]
	st.UserID = userID
	st.TransactionCount++
	st.TotalAmount += amount
	st.LastUpdatedAt = time.Now()
	s.rows[userID] = st
	return st, nil
}

func (s *UserStats) Get(_ context.Context, userID int64) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.rows[userID]
	if !ok {
		return models.UserStats{}, repository.ErrNotFound
	}
	return st, nil
}

func (s *UserStats) SetCreditScore(_ context.Context, userID int64, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.rows[userID]
	if !ok {
		return repository.ErrNotFound
	}
	st.CreditScore = score
	st.LastUpdatedAt = time.Now()
	s.rows[userID] = st
	return nil
}

type AuditLogs struct {
	mu   sync.Mutex
	rows []models.AuditLog
}

var _ repository.AuditLogs = (*AuditLogs)(nil)

func (s *AuditLogs) Create(_ context.Context, l models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = int64(len(s.rows) + 1)
	l.CreatedAt = time.Now()
	s.rows = append(s.rows, l)
	return nil
}

// All returns a copy of the recorded entries.
func (s *AuditLogs) All() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.rows...)
}
