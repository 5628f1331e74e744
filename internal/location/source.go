package location

import (
	"context"
	"errors"
	"sync"

	"driver-companion/internal/domain"
)

// ErrNoFix is returned by a Source that has no position yet.
var ErrNoFix = errors.New("no location fix")

// PushSource is a Source fed by the device: every Push replaces the current fix.
type PushSource struct {
	mu  sync.RWMutex
	fix *domain.Location
}

// NewPushSource returns an empty PushSource.
func NewPushSource() *PushSource {
	return &PushSource{}
}

// Push stores loc as the current fix.
func (s *PushSource) Push(loc domain.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fix = &loc
}

// Current returns the latest pushed fix.
func (s *PushSource) Current(context.Context) (domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fix == nil {
		return domain.Location{}, ErrNoFix
	}
	return *s.fix, nil
}

var _ Source = (*PushSource)(nil)
