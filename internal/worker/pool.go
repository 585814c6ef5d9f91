package worker

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/baharkarakas/ledger-service/internal/metrics"
)

const DefaultQueueSize = 1024

type Task = func()

// Pool runs fire-and-forget tasks on a fixed set of goroutines. Submit never
// blocks the caller: when the queue is full the task is dropped.
type Pool struct {
	wg   sync.WaitGroup
	mu   sync.RWMutex
	jobs chan Task
	done bool
	once sync.Once
	log  *slog.Logger
}

func NewPool(n, queueSize int, log *slog.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Pool{jobs: make(chan Task, queueSize), log: log}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
				p.run(job)
			}
		}()
	}
	return p
}

func (p *Pool) run(job Task) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("worker task panic", "panic", rec, "stack", string(debug.Stack()))
		}
	}()
	job()
}

// Submit enqueues f and reports whether it was accepted.
func (p *Pool) Submit(f Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.done {
		metrics.WorkerDropped.Inc()
		return false
	}
	select {
	case p.jobs <- f:
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
		return true
	default:
		metrics.WorkerDropped.Inc()
		p.log.Warn("worker queue full, task dropped", "queue_size", cap(p.jobs))
		return false
	}
}

// Stop drains queued tasks and waits for them to finish.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.mu.Lock()
		p.done = true
		close(p.jobs)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
