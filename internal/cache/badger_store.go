package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// BadgerStore is the embedded alternative to redis for single-node setups.
// An empty dir keeps everything in memory.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dir string, log *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log: log})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	return val, err
}

// Set stores val with a TTL. Badger tracks expiry in whole seconds.
func (s *BadgerStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), val).WithTTL(ttl))
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }

// badgerLogger routes badger's printf style logging into slog.
type badgerLogger struct{ log *slog.Logger }

func (l badgerLogger) Errorf(f string, args ...interface{}) {
	l.emit(slog.LevelError, f, args)
}
func (l badgerLogger) Warningf(f string, args ...interface{}) {
	l.emit(slog.LevelWarn, f, args)
}
func (l badgerLogger) Infof(f string, args ...interface{}) {
	l.emit(slog.LevelDebug, f, args) // badger is chatty at info
}
func (l badgerLogger) Debugf(f string, args ...interface{}) {
	l.emit(slog.LevelDebug, f, args)
}

func (l badgerLogger) emit(level slog.Level, f string, args []interface{}) {
	if l.log == nil {
		return
	}
	l.log.Log(context.Background(), level, fmt.Sprintf(f, args...), "component", "badger")
}
