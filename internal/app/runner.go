package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/dig"

	"driver-companion/internal/logx"
	"driver-companion/internal/service/auth"
	"driver-companion/internal/service/shift"
	"driver-companion/internal/service/workflow"
)

const (
	shutdownTimeout = 15 * time.Second
	resumeTimeout   = 10 * time.Second
)

// Runner runs the companion HTTP server.
type Runner struct {
	runFn func(*dig.Container) error
	exit  func(int)
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run, exit: os.Exit}
}

// MustRun starts the HTTP server using the provided DI container
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := loggerOf(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		if r.exit != nil {
			r.exit(1)
		}
	}
}

func loggerOf(container *dig.Container) logx.Logger {
	logger := logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })
	return logger
}

type companionIn struct {
	dig.In

	Ctx      context.Context
	Server   *http.Server
	Logger   logx.Logger
	Auth     *auth.Service
	Shift    *shift.Service
	Registry *workflow.Registry
	Tracker  shift.Tracker    `optional:"true"`
	Closers  []resourceCloser `group:"closers"`
}

func run(container *dig.Container) error {
	return container.Invoke(companionRun)
}

func companionRun(in companionIn) error {
	resumeShift(in.Ctx, in.Logger, in.Auth, in.Shift)

	errCh := startServer(in.Server, in.Logger)
	err := waitForShutdown(in.Ctx, in.Logger, errCh)

	gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
	in.Registry.CloseAll()
	if in.Tracker != nil {
		in.Tracker.Stop()
	}
	closeAll(in.Logger, in.Closers)
	return err
}

// resumeShift restarts location tracking for a driver who is still clocked in.
func resumeShift(ctx context.Context, logger logx.Logger, a *auth.Service, s *shift.Service) {
	ctx, cancel := context.WithTimeout(ctx, resumeTimeout)
	defer cancel()

	st, err := a.Status(ctx)
	if err != nil || !st.Authenticated {
		return
	}
	d, err := s.Resume(ctx)
	if err != nil {
		logger.Warn("resume shift failed", logx.Err(err))
		return
	}
	logger.Info("driver session restored",
		logx.DriverID(d.ID),
		logx.String("duty", d.Duty.Label()),
	)
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

func waitForShutdown(ctx context.Context, logger logx.Logger, errCh <-chan error) error {
	select {
	case <-ctx.Done():
		logger.Info("shutting down driver-companion")
		return ctx.Err()
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		logger.Error("listen error", logx.Err(err))
		return err
	}
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}
