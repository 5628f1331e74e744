package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
)

type reader interface {
	GetProfile(context.Context) (domain.Driver, error)
	ListOrders(context.Context) ([]json.RawMessage, error)
	GetOrder(context.Context, string) (json.RawMessage, error)
	TodayEarnings(context.Context) (domain.Earnings, error)
	CompletedOrders(context.Context) (CompletedPage, error)
	PaymentHistory(context.Context) ([]domain.Payment, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes how RetryingGateway retries.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries the read-only backend calls on transient failures.
// Mutations are not exposed here and are never retried.
type RetryingGateway struct {
	next    reader
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	sleep   func(time.Duration)
}

// NewRetryingGateway wraps next. It returns nil when next is nil.
func NewRetryingGateway(next reader, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg, sleep: time.Sleep}
}

// GetProfile retries Client.GetProfile.
func (g *RetryingGateway) GetProfile(ctx context.Context) (domain.Driver, error) {
	return retry(ctx, g, "GetProfile", g.next.GetProfile)
}

// ListOrders retries Client.ListOrders.
func (g *RetryingGateway) ListOrders(ctx context.Context) ([]json.RawMessage, error) {
	return retry(ctx, g, "ListOrders", g.next.ListOrders)
}

// GetOrder retries Client.GetOrder.
func (g *RetryingGateway) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	return retry(ctx, g, "GetOrder", func(ctx context.Context) (json.RawMessage, error) {
		return g.next.GetOrder(ctx, orderID)
	})
}

// TodayEarnings retries Client.TodayEarnings.
func (g *RetryingGateway) TodayEarnings(ctx context.Context) (domain.Earnings, error) {
	return retry(ctx, g, "TodayEarnings", g.next.TodayEarnings)
}

// CompletedOrders retries Client.CompletedOrders.
func (g *RetryingGateway) CompletedOrders(ctx context.Context) (CompletedPage, error) {
	return retry(ctx, g, "CompletedOrders", g.next.CompletedOrders)
}

// PaymentHistory retries Client.PaymentHistory.
func (g *RetryingGateway) PaymentHistory(ctx context.Context) ([]domain.Payment, error) {
	return retry(ctx, g, "PaymentHistory", g.next.PaymentHistory)
}

func retry[T any](ctx context.Context, g *RetryingGateway, method string, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("backend gateway retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, g.sleep, delay) {
			break
		}
	}
	return zero, lastErr
}

func isRetryable(err error) bool {
	if errors.Is(err, apperr.ErrNetworkUnreachable) {
		return true
	}
	switch apperr.Status(err) {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, sleep func(time.Duration), d time.Duration) bool {
	if d <= 0 {
		return true
	}
	done := make(chan struct{})
	go func() {
		sleep(d)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return false
	case <-done:
		return true
	}
}
