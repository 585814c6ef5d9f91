package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Ledger writes
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_total",
			Help: "Total successful transaction writes",
		},
		[]string{"op", "type"}, // create|update|delete, credit|debit
	)
	TransactionsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_failed_total",
			Help: "Total failed transaction writes",
		},
		[]string{"op"},
	)

	// Cache
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by cache and result",
		},
		[]string{"cache", "result"}, // analytics|transactions, hit|miss|error
	)

	// Worker kuyruğu
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
	WorkerDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_tasks_dropped_total",
			Help: "Tasks dropped because the queue was full or closed",
		},
	)
	SideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "side_effect_failures_total",
			Help: "Failed post-write hooks",
		},
		[]string{"hook"},
	)
)

// /metrics handler
var Handler = promhttp.Handler

var once sync.Once

// Init registers the collectors with the default registry. Safe to call more
// than once, which tests building several routers rely on.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDuration,
			TransactionsTotal,
			TransactionsFailed,
			CacheLookups,
			WorkerQueueDepth,
			WorkerDropped,
			SideEffectFailures,
		)
	})
}
