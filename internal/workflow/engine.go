package workflow

import (
	"time"

	"driver-companion/internal/domain"
)

// Engine turns raw backend orders into renderable order views.
// It holds no per-order state and performs no I/O.
type Engine struct {
	imageBaseURL string
	now          func() time.Time
	actions      *actionTable
}

// Option configures an Engine.
type Option func(*Engine)

// WithImageBaseURL sets the base URL relative image paths are resolved against.
func WithImageBaseURL(base string) Option {
	return func(e *Engine) { e.imageBaseURL = base }
}

// WithClock overrides the clock used to stamp collected items lacking a timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:     func() time.Time { return time.Now().UTC() },
		actions: newActionTable(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock reading.
func (e *Engine) Now() time.Time {
	return e.now()
}

// View normalizes payload and derives its checklist, progress and next action.
func (e *Engine) View(payload []byte, flags domain.Flags) domain.OrderView {
	order := e.Normalize(payload)
	return e.Compose(order, e.DeriveChecklist(order), flags)
}

// Compose builds a view from an already normalized order and a checklist held by the caller.
func (e *Engine) Compose(order domain.Order, items domain.Checklist, flags domain.Flags) domain.OrderView {
	if items == nil {
		items = domain.Checklist{}
	}
	progress := CalculateProgress(items)
	return domain.OrderView{
		Order:     order,
		Checklist: items,
		Progress:  progress,
		Action:    e.NextAction(order, progress, flags),
	}
}
