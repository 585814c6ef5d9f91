package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baharkarakas/ledger-service/internal/cache"
	"github.com/baharkarakas/ledger-service/internal/metrics"
	"github.com/baharkarakas/ledger-service/internal/models"
	repo "github.com/baharkarakas/ledger-service/internal/repository"
)

// Cipher is implemented by *crypto.FieldCipher.
type Cipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(token string) (string, error)
}

// Dispatcher is implemented by *effects.Dispatcher.
type Dispatcher interface {
	Dispatch(txnID int64) bool
}

type TransactionService struct {
	trx    repo.Transactions
	cipher Cipher
	cache  *cache.Ledger
	fx     Dispatcher
	log    *slog.Logger
}

func NewTransactionService(t repo.Transactions, c Cipher, lc *cache.Ledger, fx Dispatcher, log *slog.Logger) *TransactionService {
	if log == nil {
		log = slog.Default()
	}
	return &TransactionService{trx: t, cipher: c, cache: lc, fx: fx, log: log}
}

// ----------------- Helpers -----------------

func (s *TransactionService) reveal(tx models.Transaction) (models.Transaction, error) {
	plain, err := s.cipher.Decrypt(tx.FullName)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %d full_name: %w", tx.ID, err)
	}
	tx.FullName = plain
	return tx, nil
}

func (s *TransactionService) revealAll(txns []models.Transaction) ([]models.Transaction, error) {
	out := make([]models.Transaction, 0, len(txns))
	for _, tx := range txns {
		p, err := s.reveal(tx)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *TransactionService) seal(in models.TransactionInput) (models.Transaction, error) {
	ct, err := s.cipher.Encrypt(in.FullName)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("encrypt full_name: %w", err)
	}
	return models.Transaction{
		UserID:            in.UserID,
		FullName:          ct,
		TransactionDate:   in.TransactionDate,
		TransactionAmount: in.TransactionAmount,
		TransactionType:   in.TransactionType,
	}, nil
}

func (s *TransactionService) failed(op string, err error) error {
	if !errors.Is(err, repo.ErrNotFound) {
		metrics.TransactionsFailed.WithLabelValues(op).Inc()
	}
	return err
}

// ----------------- Reads -----------------

// List returns a page of transactions with names decrypted. Pages filtered
// by user go through the listing cache and may be up to one ttl stale.
func (s *TransactionService) List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	if f.UserID == nil || s.cache == nil {
		txns, err := s.trx.List(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		return s.revealAll(txns)
	}

	uid := *f.UserID
	txns, err := s.cache.UserTransactions(ctx, uid, f.Skip, f.Limit)
	switch {
	case err == nil:
		return s.revealAll(txns)
	case !errors.Is(err, cache.ErrMiss):
		return nil, fmt.Errorf("read listing cache: %w", err)
	}

	txns, err = s.trx.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if err := s.cache.PutUserTransactions(ctx, uid, f.Skip, f.Limit, txns); err != nil {
		s.log.Warn("listing cache write failed", "user_id", uid, "err", err)
	}
	return s.revealAll(txns)
}

func (s *TransactionService) Get(ctx context.Context, id int64) (models.Transaction, error) {
	tx, err := s.trx.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	return s.reveal(tx)
}

// ----------------- Writes -----------------

func (s *TransactionService) Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	row, err := s.seal(in)
	if err != nil {
		return models.Transaction{}, s.failed("create", err)
	}
	tx, err := s.trx.Create(ctx, row)
	if err != nil {
		return models.Transaction{}, s.failed("create", fmt.Errorf("create transaction: %w", err))
	}
	metrics.TransactionsTotal.WithLabelValues("create", string(tx.TransactionType)).Inc()
	s.log.Info("transaction created", "id", tx.ID, "user_id", tx.UserID, "type", tx.TransactionType)

	if s.fx != nil {
		s.fx.Dispatch(tx.ID)
	}

	tx.FullName = in.FullName
	return tx, nil
}

func (s *TransactionService) Update(ctx context.Context, id int64, in models.TransactionInput) (models.Transaction, error) {
	row, err := s.seal(in)
	if err != nil {
		return models.Transaction{}, s.failed("update", err)
	}
	tx, err := s.trx.Update(ctx, id, row)
	if err != nil {
		return models.Transaction{}, s.failed("update", err)
	}
	metrics.TransactionsTotal.WithLabelValues("update", string(tx.TransactionType)).Inc()
	s.log.Info("transaction updated", "id", tx.ID)

	tx.FullName = in.FullName
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) (models.Transaction, error) {
	tx, err := s.trx.Delete(ctx, id)
	if err != nil {
		return models.Transaction{}, s.failed("delete", err)
	}
	metrics.TransactionsTotal.WithLabelValues("delete", string(tx.TransactionType)).Inc()
	s.log.Info("transaction deleted", "id", tx.ID)
	return s.reveal(tx)
}
