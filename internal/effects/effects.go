// Package effects holds the post-write hooks that run after a transaction
// is created. Hooks are fire-and-forget: their outcome never reaches the
// HTTP caller and never undoes the write.
package effects

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/ledger-service/internal/metrics"
)

const DefaultTimeout = 10 * time.Second

type Hook interface {
	Name() string
	Run(ctx context.Context, txnID int64) error
}

// TaskQueue is satisfied by *worker.Pool.
type TaskQueue interface {
	Submit(func()) bool
}

// Dispatcher schedules every hook for a transaction as one queued task.
// Hooks run in registration order so the credit score sees fresh stats.
type Dispatcher struct {
	queue   TaskQueue
	hooks   []Hook
	timeout time.Duration
	log     *slog.Logger
}

func NewDispatcher(q TaskQueue, log *slog.Logger, timeout time.Duration, hooks ...Hook) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{queue: q, hooks: hooks, timeout: timeout, log: log}
}

// Dispatch returns false when the queue refused the task.
func (d *Dispatcher) Dispatch(txnID int64) bool {
	if len(d.hooks) == 0 {
		return true
	}
	ok := d.queue.Submit(func() { d.runAll(txnID) })
	if !ok {
		d.log.Warn("side effects dropped", "transaction_id", txnID)
	}
	return ok
}

func (d *Dispatcher) runAll(txnID int64) {
	for _, h := range d.hooks {
		d.runOne(h, txnID)
	}
}

func (d *Dispatcher) runOne(h Hook, txnID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	if err := h.Run(ctx, txnID); err != nil {
		metrics.SideEffectFailures.WithLabelValues(h.Name()).Inc()
		d.log.Error("side effect failed", "hook", h.Name(), "transaction_id", txnID, "err", err)
		return
	}
	d.log.Debug("side effect done", "hook", h.Name(), "transaction_id", txnID, "took", time.Since(start))
}

// Inline runs tasks on the calling goroutine. Used by tests and by the
// seeder, where there is no pool.
type Inline struct{}

func (Inline) Submit(f func()) bool { f(); return true }
