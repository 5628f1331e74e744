package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
	"driver-companion/internal/session"
)

// Source yields the device position.
type Source interface {
	Current(ctx context.Context) (domain.Location, error)
}

// Sender reports a position to the backend.
type Sender interface {
	UpdateLocation(ctx context.Context, loc domain.Location) error
}

type resultCounter interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// Sample results.
const (
	ResultSent            = "sent"
	ResultThrottled       = "throttled"
	ResultUnauthenticated = "unauthenticated"
	ResultNoFix           = "no_fix"
	ResultFailed          = "failed"
)

// Config tunes a Tracker.
type Config struct {
	// Interval between samples while tracking.
	Interval time.Duration
	// MinSendInterval is the least time between two reports sent to the backend.
	MinSendInterval time.Duration
	// SendTimeout bounds one report.
	SendTimeout time.Duration
}

// Tracker reports the driver position while on duty.
type Tracker struct {
	src     Source
	sender  Sender
	store   session.Store
	logger  logx.Logger
	updates resultCounter
	cfg     Config
	check   *validator.Validate
	now     func() time.Time

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	ticking  chan struct{}
	last     *domain.Location
	lastSent time.Time
}

// NewTracker creates a stopped Tracker. updates may be nil.
func NewTracker(src Source, sender Sender, store session.Store, cfg Config, logger logx.Logger, updates resultCounter) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.MinSendInterval < 0 {
		cfg.MinSendInterval = 0
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Tracker{
		src:     src,
		sender:  sender,
		store:   store,
		logger:  logger,
		updates: updates,
		cfg:     cfg,
		check:   validator.New(),
		now:     time.Now,
	}
}

// Start begins periodic sampling. Starting a running tracker does nothing.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(ctx, t.done)
	t.logger.Info("location tracking started", logx.Duration("interval", t.cfg.Interval))
}

// Stop ends sampling and waits for the loop to exit. When a sample is in
// flight, e.g. Stop runs from a hook the sample triggered, it only cancels and
// the loop exits once that sample returns.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	inSample := done != nil && t.ticking == done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if !inSample {
		<-done
	}
	t.logger.Info("location tracking stopped")
}

// Running reports whether the tracker samples periodically.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Last returns the last position sent to the backend.
func (t *Tracker) Last() (domain.Location, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return domain.Location{}, false
	}
	return *t.last, true
}

func (t *Tracker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	t.tick(ctx, done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx, done)
		}
	}
}

func (t *Tracker) tick(ctx context.Context, loop chan struct{}) {
	t.mu.Lock()
	t.ticking = loop
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		if t.ticking == loop {
			t.ticking = nil
		}
		t.mu.Unlock()
	}()

	if _, err := t.Sample(ctx); err != nil && !errors.Is(err, context.Canceled) {
		t.logger.Debug("location sample failed", logx.Err(err))
	}
}

// Sample takes one position and sends it unless a report went out less than
// MinSendInterval ago or no driver is logged in. It returns the sample result.
func (t *Tracker) Sample(ctx context.Context) (string, error) {
	now := t.now()

	t.mu.Lock()
	recent := !t.lastSent.IsZero() && now.Sub(t.lastSent) < t.cfg.MinSendInterval
	t.mu.Unlock()
	if recent {
		return t.count(ResultThrottled), nil
	}

	if t.store != nil {
		ok, err := session.Authenticated(ctx, t.store, now)
		if err != nil {
			return t.count(ResultFailed), fmt.Errorf("check session: %w", err)
		}
		if !ok {
			return t.count(ResultUnauthenticated), nil
		}
	}

	loc, err := t.src.Current(ctx)
	if errors.Is(err, ErrNoFix) {
		return t.count(ResultNoFix), nil
	}
	if err != nil {
		return t.count(ResultFailed), fmt.Errorf("read location: %w", err)
	}
	if err := t.check.Struct(loc); err != nil {
		return t.count(ResultFailed), fmt.Errorf("location out of range: %w", apperr.ErrValidation)
	}
	if loc.Timestamp.IsZero() {
		loc.Timestamp = now.UTC()
	}

	sendCtx, cancel := context.WithTimeout(ctx, t.cfg.SendTimeout)
	defer cancel()
	if err := t.sender.UpdateLocation(sendCtx, loc); err != nil {
		return t.count(ResultFailed), err
	}

	t.mu.Lock()
	moved := 0.0
	if t.last != nil {
		moved = Distance(*t.last, loc)
	}
	t.last = &loc
	t.lastSent = now
	t.mu.Unlock()

	t.logger.Debug("location sent", logx.Float64("moved_m", moved))
	return t.count(ResultSent), nil
}

func (t *Tracker) count(result string) string {
	if t.updates != nil {
		t.updates.WithLabelValues(result).Inc()
	}
	return result
}
