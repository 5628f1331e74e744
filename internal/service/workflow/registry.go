package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
)

// Registry keeps one Session per open order.
type Registry struct {
	deps     Deps
	validate *validator.Validate

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps.withDefaults(),
		validate: validator.New(),
		sessions: make(map[string]*Session),
	}
}

// Open returns the session of orderID, creating and loading it on first use.
// An already open session is refreshed.
func (r *Registry) Open(ctx context.Context, orderID string) (*Session, domain.OrderView, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.OrderView{}, fmt.Errorf("order id is required: %w", apperr.ErrValidation)
	}

	now := r.deps.Engine.Now()
	r.evictIdle(now)

	r.mu.Lock()
	s, ok := r.sessions[orderID]
	if !ok {
		s = newSession(orderID, r.deps, r.validate)
		r.sessions[orderID] = s
	}
	r.mu.Unlock()
	s.touch(now)

	view, err := s.Refresh(ctx)
	if err != nil {
		if !ok {
			r.drop(orderID, s)
		}
		return nil, view, err
	}
	if !ok {
		s.publish(ctx, domain.EventOrderViewed, view.Order.Status, nil, nil)
		r.deps.Logger.Debug("order session opened", logx.OrderID(orderID))
	}
	return s, view, nil
}

// Get returns the open session of orderID.
func (r *Registry) Get(orderID string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[strings.TrimSpace(orderID)]
	r.mu.Unlock()
	if ok {
		s.touch(r.deps.Engine.Now())
	}
	return s, ok
}

// evictIdle closes sessions unused for longer than the idle TTL.
func (r *Registry) evictIdle(now time.Time) {
	if r.deps.IdleTTL < 0 {
		return
	}
	var stale []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idle(now, r.deps.IdleTTL) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		r.deps.Logger.Debug("idle order sessions evicted", logx.Int("count", len(stale)))
	}
}

// Close closes and forgets the session of orderID.
func (r *Registry) Close(orderID string) {
	r.mu.Lock()
	s, ok := r.sessions[orderID]
	delete(r.sessions, orderID)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll closes every session, e.g. after the driver session was invalidated.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	open := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range open {
		s.Close()
	}
	if len(open) > 0 {
		r.deps.Logger.Info("order sessions closed", logx.Int("count", len(open)))
	}
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) drop(orderID string, s *Session) {
	r.mu.Lock()
	if r.sessions[orderID] == s {
		delete(r.sessions, orderID)
	}
	r.mu.Unlock()
	s.Close()
}
