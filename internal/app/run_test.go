package app

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"driver-companion/internal/config"
	"driver-companion/internal/logx"
	testlog "driver-companion/internal/testutil"
)

func containerWithLogger(t *testing.T, rec *testlog.Recorder) *dig.Container {
	t.Helper()
	c := dig.New()
	require.NoError(t, c.Provide(func() logx.Logger { return rec.Logger() }))
	return c
}

func TestRunner_MustRun_ShutdownRequested(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	r := &Runner{runFn: func(*dig.Container) error { return context.Canceled }}

	r.MustRun(containerWithLogger(t, rec))
	require.True(t, rec.Has("shutdown requested, exiting"))
}

func TestRunner_MustRun_StartupTimeout(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	r := &Runner{runFn: func(*dig.Container) error { return context.DeadlineExceeded }}

	r.MustRun(containerWithLogger(t, rec))
	require.True(t, rec.Has("startup aborted: startup timeout exceeded"))
}

func TestRunner_MustRun_OtherErrorExits(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	code := -1
	r := &Runner{
		runFn: func(*dig.Container) error { return errors.New("listen tcp: address in use") },
		exit:  func(c int) { code = c },
	}

	r.MustRun(containerWithLogger(t, rec))
	require.Equal(t, 1, code)
	require.True(t, rec.Has("run error"))
}

func TestNewRunner_DefaultFields(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	require.NotNil(t, r.runFn)
	require.NotNil(t, r.exit)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := buildTestContainer(t, ctx, testConfig())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := run(c)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGracefulShutdown_DoesNotPanic(t *testing.T) {
	t.Parallel()

	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}

	require.NotPanics(t, func() {
		gracefulShutdown(srv, logx.Nop(), 100*time.Millisecond)
	})
}

func TestWaitForShutdown_ListenError(t *testing.T) {
	t.Parallel()

	errCh := make(chan error, 1)
	errCh <- errors.New("bind: permission denied")
	close(errCh)

	rec := testlog.New()
	err := waitForShutdown(context.Background(), rec.Logger(), errCh)
	require.EqualError(t, err, "bind: permission denied")
	require.True(t, rec.Has("listen error"))
}

type countingPurger struct{ calls atomic.Int32 }

func (p *countingPurger) Purge(context.Context) error {
	p.calls.Add(1)
	return nil
}

// requireEventually polls condition until it holds or timeout passes.
func requireEventually(t *testing.T, timeout, tick time.Duration, condition func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s: condition not satisfied within %s", msg, timeout)
		}
		<-ticker.C
	}
}

func TestStartPurgeLoop_PurgesPeriodically(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &countingPurger{}
	startPurgeLoop(ctx, logx.Nop(), p, 10*time.Millisecond)

	requireEventually(t, 500*time.Millisecond, 5*time.Millisecond,
		func() bool { return p.calls.Load() >= 2 },
		"expected Purge to run at least twice",
	)
}

func TestStartPurgeLoop_DisabledWithoutInterval(t *testing.T) {
	t.Parallel()

	p := &countingPurger{}
	startPurgeLoop(context.Background(), logx.Nop(), p, 0)
	time.Sleep(20 * time.Millisecond)
	require.Zero(t, p.calls.Load())
}

func TestWorkerRunner_MustRun(t *testing.T) {
	t.Parallel()

	r := &WorkerRunner{runFn: func(*dig.Container) error { return nil }}
	require.NotPanics(t, func() { r.MustRun(dig.New()) })

	r = &WorkerRunner{runFn: func(*dig.Container) error { return context.Canceled }}
	require.NotPanics(t, func() { r.MustRun(dig.New()) })

	r = &WorkerRunner{runFn: func(*dig.Container) error { return errors.New("boom") }}
	require.Panics(t, func() { r.MustRun(dig.New()) })
}

func TestWorkerRun_ReturnsError_WhenConsumerNil(t *testing.T) {
	t.Parallel()

	err := workerRun(workerIn{Ctx: context.Background(), Logger: logx.Nop()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "kafka consumer is nil")
}

func TestWorkerBuild_DBFailureSurfacesOnInvoke(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	var fatal string
	c := NewWorkerContainerBuilder().
		WithConfig(func() (*config.Config, error) { return cfg, nil }).
		WithDBConnect(func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error) {
			return nil, errors.New("connection refused")
		}).
		WithLogFatalf(func(format string, _ ...interface{}) { fatal = format }).
		MustBuild(context.Background())
	require.NotNil(t, c)
	require.Empty(t, fatal)

	err := c.Invoke(func(*pgxpool.Pool) {})
	require.ErrorContains(t, err, "connection refused")
}

func TestNewWorkerMetricsServer(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Journal.MetricsAddr = ""
	require.Nil(t, newWorkerMetricsServer(cfg, newRegistry()).Server)

	cfg.Journal.MetricsAddr = ":9102"
	srv := newWorkerMetricsServer(cfg, newRegistry())
	require.NotNil(t, srv.Server)
	require.Equal(t, ":9102", srv.Addr)
}
