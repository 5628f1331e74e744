package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
	engine "driver-companion/internal/workflow"
)

// ErrSessionClosed is returned when a closed order session is used.
var ErrSessionClosed = errors.New("order session closed")

type commandCounter interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

type counter interface {
	Inc()
}

// Deps are the collaborators shared by every order session.
type Deps struct {
	Backend   Backend
	Engine    *engine.Engine
	Publisher Publisher
	Logger    logx.Logger
	Commands  commandCounter
	Reverts   counter
	// DriverID resolves the logged in driver, used to stamp events and local assignment.
	DriverID func(context.Context) string
	// IdleTTL is how long an unused session stays open. Zero means DefaultIdleTTL,
	// a negative value keeps sessions until they are closed.
	IdleTTL time.Duration
}

// DefaultIdleTTL is the idle lifetime of an order session.
const DefaultIdleTTL = 30 * time.Minute

func (d Deps) withDefaults() Deps {
	if d.Engine == nil {
		d.Engine = engine.New()
	}
	if d.Logger == nil {
		d.Logger = logx.Nop()
	}
	if d.DriverID == nil {
		d.DriverID = func(context.Context) string { return "" }
	}
	if d.IdleTTL == 0 {
		d.IdleTTL = DefaultIdleTTL
	}
	return d
}

// Session owns the state of one open order: the normalized order, its checklist and
// the in-flight command markers. All methods are safe for concurrent use.
type Session struct {
	orderID  string
	deps     Deps
	logger   logx.Logger
	validate *validator.Validate

	mu        sync.Mutex
	order     domain.Order
	items     domain.Checklist
	loaded    bool
	closed    bool
	accepting bool
	busy      int

	issued  uint64
	applied uint64

	toggleSeq uint64
	toggles   map[string]uint64

	lastUsed time.Time
}

func newSession(orderID string, deps Deps, validate *validator.Validate) *Session {
	deps = deps.withDefaults()
	return &Session{
		orderID:  orderID,
		deps:     deps,
		logger:   deps.Logger.With(logx.OrderID(orderID)),
		validate: validate,
		toggles:  make(map[string]uint64),
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// idle reports whether the session was unused for longer than ttl and has nothing in flight.
func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	if s.accepting || s.busy > 0 || len(s.toggles) > 0 {
		return false
	}
	return now.Sub(s.lastUsed) > ttl
}

// OrderID returns the id the session was opened for.
func (s *Session) OrderID() string {
	return s.orderID
}

// Refresh re-fetches the order and re-derives everything from it.
// A response older than the last applied one is dropped.
func (s *Session) Refresh(ctx context.Context) (domain.OrderView, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.OrderView{}, ErrSessionClosed
	}
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	raw, err := s.deps.Backend.GetOrder(ctx, s.orderID)
	if err != nil {
		s.logger.Warn("order refresh failed", logx.Err(err))
		return s.View(), err
	}
	order := s.deps.Engine.Normalize(raw)
	items := s.deps.Engine.DeriveChecklist(order)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.OrderView{}, ErrSessionClosed
	}
	if seq < s.applied {
		s.logger.Debug("stale order refresh dropped", logx.Int64("seq", int64(seq)))
		return s.viewLocked(), nil
	}
	if s.loaded && order.Status.IsBackwardFrom(s.order.Status) {
		s.logger.Warn("order status moved backward",
			logx.String("from", string(s.order.Status)),
			logx.String("to", string(order.Status)),
		)
	}
	s.order, s.items, s.loaded, s.applied = order, items, true, seq
	return s.viewLocked(), nil
}

// View returns the current renderable state. It is empty until the first refresh lands.
func (s *Session) View() domain.OrderView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Close makes the session discard every response still in flight.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) viewLocked() domain.OrderView {
	if !s.loaded {
		return domain.OrderView{}
	}
	return s.deps.Engine.Compose(s.order, s.items.Clone(), domain.Flags{
		Accepting: s.accepting,
		Busy:      s.busy > 0,
	})
}

func (s *Session) usableLocked() error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case !s.loaded:
		return errNotLoaded
	default:
		return nil
	}
}

var errNotLoaded = fmt.Errorf("order not loaded: %w", apperr.ErrValidation)

func (s *Session) record(ctx context.Context, command, eventType string, status domain.OrderStatus, err error, mod func(*domain.WorkflowEvent)) {
	outcome := domain.OutcomeSuccess
	if err != nil {
		outcome = domain.OutcomeFailure
	}
	if s.deps.Commands != nil {
		s.deps.Commands.WithLabelValues(command, outcome).Inc()
	}

	fields := []logx.Field{logx.String("command", command), logx.String("outcome", outcome)}
	if err != nil {
		s.logger.Warn("workflow command failed", append(fields, logx.String("kind", apperr.Kind(err)), logx.Err(err))...)
	} else {
		s.logger.Info("workflow command done", fields...)
	}

	s.publish(ctx, eventType, status, err, mod)
}

func (s *Session) publish(ctx context.Context, eventType string, status domain.OrderStatus, err error, mod func(*domain.WorkflowEvent)) {
	if s.deps.Publisher == nil {
		return
	}
	e := domain.WorkflowEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OrderID:    s.orderID,
		DriverID:   s.deps.DriverID(ctx),
		Status:     status,
		Outcome:    domain.OutcomeSuccess,
		ErrorKind:  apperr.Kind(err),
		OccurredAt: time.Now().UTC(),
	}
	if err != nil {
		e.Outcome = domain.OutcomeFailure
	}
	if mod != nil {
		mod(&e)
	}
	if perr := s.deps.Publisher.Publish(context.WithoutCancel(ctx), e); perr != nil {
		s.logger.Warn("publish workflow event failed", logx.String("type", eventType), logx.Err(perr))
	}
}
