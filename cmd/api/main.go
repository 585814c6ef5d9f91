package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/ledger-service/internal/api"
	"github.com/baharkarakas/ledger-service/internal/api/handlers"
	"github.com/baharkarakas/ledger-service/internal/cache"
	"github.com/baharkarakas/ledger-service/internal/config"
	"github.com/baharkarakas/ledger-service/internal/crypto"
	"github.com/baharkarakas/ledger-service/internal/db"
	"github.com/baharkarakas/ledger-service/internal/effects"
	"github.com/baharkarakas/ledger-service/internal/logger"
	"github.com/baharkarakas/ledger-service/internal/repository"
	"github.com/baharkarakas/ledger-service/internal/repository/memory"
	"github.com/baharkarakas/ledger-service/internal/repository/postgres"
	"github.com/baharkarakas/ledger-service/internal/services"
	"github.com/baharkarakas/ledger-service/internal/worker"
)

type stores struct {
	txns  repository.Transactions
	stats repository.UserStats
	audit repository.AuditLogs
	close func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	kv, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer kv.Close()

	if cfg.UsingDevKey {
		log.Warn("FIELD_ENCRYPTION_KEY not set, using the development key")
	}
	cipher, err := crypto.NewFieldCipher(cfg.FieldEncryptionKey)
	if err != nil {
		return err
	}

	wp := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize, log)
	// in-flight hooks finish before the stores close
	defer wp.Stop()
	fx := effects.NewDispatcher(wp, log, cfg.HookTimeout,
		effects.NewStatsUpdater(st.txns, st.stats),
		effects.NewNotifier(st.txns, cfg.NotifyWebhookURL, cfg.NotifyWebhookSecret, log),
		effects.NewCreditScorer(st.txns, st.stats, st.audit),
	)

	lc := cache.NewLedger(kv, cfg.CacheTTL)
	txnSvc := services.NewTransactionService(st.txns, cipher, lc, fx, log)
	analyticsSvc := services.NewAnalyticsService(st.txns, lc, log)

	if cfg.Seed {
		if _, err := txnSvc.Seed(ctx); err != nil {
			return err
		}
	}

	r := api.NewRouter(cfg, handlers.NewTransactionHandler(txnSvc, analyticsSvc))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			"port", cfg.HTTPPort,
			"env", cfg.Env,
			"store", cfg.StoreBackend,
			"cache", cfg.CacheBackend,
			"cache_ttl", cfg.CacheTTL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	if cfg.StoreBackend == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		m := memory.NewRepositories()
		return stores{txns: m.Transactions, stats: m.UserStats, audit: m.AuditLogs, close: func() {}}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		log.Info("migrations applied")
	}
	repos := postgres.NewRepositories(pool)
	return stores{txns: repos.Transactions, stats: repos.UserStats, audit: repos.AuditLogs, close: pool.Close}, nil
}

func openCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Store, error) {
	if cfg.CacheBackend == "badger" {
		return cache.NewBadgerStore(cfg.BadgerDir, log)
	}
	return cache.NewRedisStore(ctx, cfg.RedisURL)
}
