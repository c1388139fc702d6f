package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	coursemarketplace "academy/contexts/learning/course-marketplace"
	"academy/contexts/learning/course-marketplace/adapters/memory"
	marketplacemetrics "academy/contexts/learning/course-marketplace/adapters/metrics"
	"academy/contexts/learning/course-marketplace/adapters/payment"
	postgresadapter "academy/contexts/learning/course-marketplace/adapters/postgres"
	redisadapter "academy/contexts/learning/course-marketplace/adapters/redis"
	workerapp "academy/contexts/learning/course-marketplace/application/workers"
	"academy/contexts/learning/course-marketplace/ports"
	"academy/internal/platform/config"
	"academy/internal/platform/db"
	"academy/internal/platform/httpserver"
	"academy/internal/platform/messaging"
	platformredis "academy/internal/platform/redis"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	moduleName        = "internal/app/bootstrap"
	shutdownTimeout   = 10 * time.Second
	brokerPingTimeout = 5 * time.Second
)

type APIApp struct {
	server    *httpserver.Server
	resources *resources
	// workers is set in memory mode, where no separate worker process can
	// reach the store.
	workers *workerLoop
	logger  *slog.Logger
}

type WorkerApp struct {
	resources *resources
	workers   *workerLoop
	logger    *slog.Logger
}

// resources holds every connection a process opened, for Close.
type resources struct {
	postgres *db.Postgres
	redis    *platformredis.Client
	kafka    *messaging.KafkaPublisher
}

type workerLoop struct {
	outboxRelay  workerapp.OutboxRelay
	reaper       workerapp.SettlementReaper
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	metrics := marketplacemetrics.New(prometheus.DefaultRegisterer)
	wallet := payment.NewWalletGateway(cfg.WalletOpeningBalance, logger)
	settleTimeout := coursemarketplace.SettleTimeoutFor(cfg.SettlementTimeout)
	res := &resources{}

	app := &APIApp{resources: res, logger: logger}
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore(logger)
		module := coursemarketplace.NewModule(coursemarketplace.Dependencies{
			Courses:       store,
			Users:         store,
			UnitOfWork:    store,
			Transactions:  store,
			Payments:      wallet,
			Locks:         memory.NewPurchaseLock(0),
			Clock:         store,
			IDGenerator:   store,
			Metrics:       metrics,
			Logger:        logger,
			SettleTimeout: settleTimeout,
		})
		module.Store = store
		module.Wallet = wallet
		publisher, err := buildPublisher(ctx, cfg, res, logger)
		if err != nil {
			_ = res.close()
			return nil, err
		}
		app.workers = newWorkerLoop(cfg, store, store, publisher, store, metrics, logger)
		app.server = httpserver.New(module, prometheus.DefaultGatherer, logger, normalizeAddr(cfg.HTTPPort))
	default:
		repo, err := connectPostgres(ctx, cfg, res, logger)
		if err != nil {
			_ = res.close()
			return nil, err
		}
		locks, err := buildPurchaseLocker(ctx, cfg, res, logger)
		if err != nil {
			_ = res.close()
			return nil, err
		}
		module := coursemarketplace.NewModule(coursemarketplace.Dependencies{
			Courses:       repo,
			Users:         repo,
			UnitOfWork:    repo,
			Transactions:  repo,
			Payments:      wallet,
			Locks:         locks,
			Clock:         postgresadapter.SystemClock{},
			IDGenerator:   postgresadapter.UUIDGenerator{},
			Metrics:       metrics,
			Logger:        logger,
			SettleTimeout: settleTimeout,
		})
		module.Wallet = wallet
		app.server = httpserver.New(module, prometheus.DefaultGatherer, logger, normalizeAddr(cfg.HTTPPort))
	}
	return app, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return nil, errors.New("worker requires STORAGE_DRIVER=postgres; memory mode runs workers inside the api process")
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	metrics := marketplacemetrics.New(prometheus.DefaultRegisterer)
	res := &resources{}

	repo, err := connectPostgres(ctx, cfg, res, logger)
	if err != nil {
		_ = res.close()
		return nil, err
	}
	publisher, err := buildPublisher(ctx, cfg, res, logger)
	if err != nil {
		_ = res.close()
		return nil, err
	}

	return &WorkerApp{
		resources: res,
		workers:   newWorkerLoop(cfg, repo, repo, publisher, postgresadapter.SystemClock{}, metrics, logger),
		logger:    logger,
	}, nil
}

// Run serves HTTP until ctx is done, then shuts the server down gracefully.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", moduleName,
		"layer", "platform",
		"embedded_workers", a.workers != nil,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	if a.workers != nil {
		group.Go(func() error {
			return a.workers.run(groupCtx)
		})
	}
	return group.Wait()
}

func (a *APIApp) Close() error {
	return a.resources.close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	return w.workers.run(ctx)
}

func (w *WorkerApp) Close() error {
	return w.resources.close()
}

func newWorkerLoop(
	cfg config.Config,
	outbox ports.OutboxRepository,
	transactions ports.TransactionRepository,
	publisher ports.EventPublisher,
	clock ports.Clock,
	metrics ports.Metrics,
	logger *slog.Logger,
) *workerLoop {
	return &workerLoop{
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    outbox,
			Publisher: publisher,
			Clock:     clock,
			Topic:     cfg.EventsTopic,
			BatchSize: cfg.OutboxBatchSize,
			Metrics:   metrics,
			Logger:    logger,
		},
		reaper: workerapp.SettlementReaper{
			Transactions: transactions,
			Clock:        clock,
			Timeout:      cfg.SettlementTimeout,
			BatchSize:    cfg.OutboxBatchSize,
			Metrics:      metrics,
			Logger:       logger,
		},
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}
}

// run polls until ctx is done. Cycle errors are already logged by the
// workers and the next tick retries them.
func (w *workerLoop) run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker loop started",
		"event", "bootstrap_worker_started",
		"module", moduleName,
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		_ = w.reaper.RunOnce(ctx)
		_ = w.outboxRelay.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func connectPostgres(
	ctx context.Context,
	cfg config.Config,
	res *resources,
	logger *slog.Logger,
) (*postgresadapter.Repository, error) {
	pg, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	res.postgres = pg
	if err := postgresadapter.Migrate(ctx, pg.DB); err != nil {
		return nil, err
	}
	return postgresadapter.NewRepository(pg.DB, logger), nil
}

// buildPurchaseLocker prefers a redis lease so purchases serialise across
// api replicas; without REDIS_URL the lock is process-local.
func buildPurchaseLocker(
	ctx context.Context,
	cfg config.Config,
	res *resources,
	logger *slog.Logger,
) (ports.PurchaseLocker, error) {
	client, err := platformredis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		logger.Warn("REDIS_URL not set, purchase lock is process-local",
			"event", "bootstrap_purchase_lock_local",
			"module", moduleName,
			"layer", "platform",
		)
		return memory.NewPurchaseLock(0), nil
	}
	res.redis = client
	return redisadapter.NewPurchaseLock(client.Client, cfg.PurchaseLockTTL, logger), nil
}

func buildPublisher(ctx context.Context, cfg config.Config, res *resources, logger *slog.Logger) (ports.EventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return messaging.NewBus(logger), nil
	}
	publisher, err := messaging.NewKafkaPublisher(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}
	res.kafka = publisher

	pingCtx, cancel := context.WithTimeout(ctx, brokerPingTimeout)
	defer cancel()
	if err := publisher.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("kafka brokers %v unreachable: %w", cfg.KafkaBrokers, err)
	}
	return publisher, nil
}

func (r *resources) close() error {
	if r.kafka != nil {
		r.kafka.Close()
	}
	var errs []error
	if r.redis != nil {
		errs = append(errs, r.redis.Close())
	}
	if r.postgres != nil {
		errs = append(errs, r.postgres.Close())
	}
	return errors.Join(errs...)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
