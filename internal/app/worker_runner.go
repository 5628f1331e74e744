package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"driver-companion/internal/logx"
	"driver-companion/internal/transport/kafka"
)

// WorkerRunner runs the journal worker.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun consumes workflow events until the container context is cancelled.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

type purger interface {
	Purge(ctx context.Context) error
}

type workerIn struct {
	dig.In

	Ctx      context.Context
	Pool     *pgxpool.Pool
	Logger   logx.Logger
	Consumer *kafka.Consumer
	Journal  purger
	Interval purgeInterval
	Metrics  workerMetricsServer
}

func runWorker(container *dig.Container) error {
	return container.Invoke(func(in workerIn) error { return workerRun(in) })
}

func workerRun(in workerIn) error {
	if in.Consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	defer closeWorker(in.Pool, in.Logger, in.Consumer, in.Metrics)

	if in.Metrics.Server != nil {
		errCh := startServer(in.Metrics.Server, in.Logger)
		go func() {
			if err, ok := <-errCh; ok {
				in.Logger.Error("metrics server stopped", logx.Err(err))
			}
		}()
	}
	startPurgeLoop(in.Ctx, in.Logger, in.Journal, time.Duration(in.Interval))

	in.Logger.Info("driver-journal-worker started")
	return in.Consumer.Run(in.Ctx)
}

// startPurgeLoop sweeps expired journal events every interval until ctx is done.
func startPurgeLoop(ctx context.Context, logger logx.Logger, p purger, interval time.Duration) {
	if p == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.Purge(ctx); err != nil && ctx.Err() == nil {
					logger.Error("journal purge failed", logx.Err(err))
				}
			}
		}
	}()
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer, metrics workerMetricsServer) {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if metrics.Server != nil {
		gracefulShutdown(metrics.Server, logger, 5*time.Second)
	}
	if pool != nil {
		pool.Close()
	}
}
