package orders

import (
	"fmt"
	"strings"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
)

// Scope selects which orders a list shows.
type Scope string

const (
	// ScopeAll is every order the backend returns, as on the dashboard.
	ScopeAll Scope = "all"
	// ScopeRelevant is orders held by the driver or waiting for acceptance.
	ScopeRelevant Scope = "relevant"
	// ScopeMine is orders held by the driver.
	ScopeMine Scope = "mine"
)

// ParseScope parses a scope name. Empty means ScopeAll.
func ParseScope(raw string) (Scope, error) {
	switch s := Scope(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return ScopeAll, nil
	case ScopeAll, ScopeRelevant, ScopeMine:
		return s, nil
	default:
		return "", fmt.Errorf("unknown order scope %q: %w", raw, apperr.ErrValidation)
	}
}

func (s Scope) includes(o domain.Order) bool {
	switch s {
	case ScopeMine:
		return o.Assignment.AssignedToMe
	case ScopeRelevant:
		return o.Assignment.AssignedToMe || o.Assignment.RequiresAcceptance
	default:
		return true
	}
}
