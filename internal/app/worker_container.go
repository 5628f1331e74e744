package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"driver-companion/internal/config"
	"driver-companion/internal/logx"
	"driver-companion/internal/metrics"
	"driver-companion/internal/repository"
	"driver-companion/internal/service/journal"
	"driver-companion/internal/transport/kafka"
)

type dbConnectFunc func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)

// purgeInterval is the period of journal retention sweeps.
type purgeInterval time.Duration

// WorkerContainerBuilder is a dig container builder for the journal worker.
type WorkerContainerBuilder struct {
	loadConfig func() (*config.Config, error)
	dbConnect  dbConnectFunc
	logFatalf  func(string, ...interface{})
}

// NewWorkerContainerBuilder returns a new worker container builder
func NewWorkerContainerBuilder() *WorkerContainerBuilder {
	return &WorkerContainerBuilder{
		loadConfig: config.Load,
		dbConnect:  connectDbWithRetry,
		logFatalf:  log.Fatalf,
	}
}

// WithConfig replaces configuration loading.
func (b *WorkerContainerBuilder) WithConfig(fn func() (*config.Config, error)) *WorkerContainerBuilder {
	if fn != nil {
		b.loadConfig = fn
	}
	return b
}

// WithDBConnect sets the database connection function
func (b *WorkerContainerBuilder) WithDBConnect(fn dbConnectFunc) *WorkerContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *WorkerContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *WorkerContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new worker container
func (b *WorkerContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *WorkerContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := provideAll(container,
		func() context.Context { return ctx },
		b.loadConfig,
		NewLogger,
		newRegistry,
		func(cfg *config.Config) purgeInterval { return purgeInterval(cfg.Journal.PurgeInterval) },
	); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerJournal(container); err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	return container, nil
}

// MustBuildWorkerContainer builds and returns a new worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewWorkerContainerBuilder().MustBuild(ctx)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		return dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
	}
	providerRepo := func(ctx context.Context, pool *pgxpool.Pool) (*repository.JournalRepo, error) {
		if err := repository.Migrate(ctx, pool); err != nil {
			return nil, err
		}
		return repository.NewJournalRepo(pool), nil
	}
	return provideAll(container, providerDB, providerRepo)
}

func registerJournal(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, repo *repository.JournalRepo, logger logx.Logger) *journal.Processor {
			return journal.NewProcessor(repo, repo, journal.Config{
				Retention:        cfg.Journal.Retention,
				OperationTimeout: cfg.Journal.OperationTimeout,
			}, logger.With(logx.String("component", "journal")))
		},
		func(p *journal.Processor) purger { return p },
		func(reg *prometheus.Registry) (*prometheus.CounterVec, error) {
			events := metrics.NewJournalEventsTotal()
			if err := reg.Register(events); err != nil {
				return nil, err
			}
			return events, nil
		},
		func(cfg *config.Config, logger logx.Logger, p *journal.Processor, events *prometheus.CounterVec) (*kafka.Consumer, error) {
			c, err := kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, makeJournalHandler(p))
			if err != nil {
				return nil, fmt.Errorf("kafka consumer: %w", err)
			}
			return c.WithResults(events), nil
		},
		newWorkerMetricsServer,
	)
}

// workerMetricsServer is nil when the worker does not expose metrics.
type workerMetricsServer struct{ *http.Server }

func newWorkerMetricsServer(cfg *config.Config, reg *prometheus.Registry) workerMetricsServer {
	if cfg.Journal.MetricsAddr == "" {
		return workerMetricsServer{}
	}
	mux := chi.NewRouter()
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return workerMetricsServer{&http.Server{
		Addr:              cfg.Journal.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}
