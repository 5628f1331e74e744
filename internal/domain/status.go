package domain

import "strings"

// OrderStatus is the canonical lifecycle status of an order.
type OrderStatus string

const (
	StatusReceived       OrderStatus = "Received"
	StatusProcessing     OrderStatus = "Processing"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
	StatusUnknown        OrderStatus = "Unknown"
)

// statusAliases maps lower-cased backend spellings (current and legacy) onto canonical statuses.
var statusAliases = map[string]OrderStatus{
	"received":         StatusReceived,
	"pending":          StatusReceived,
	"processing":       StatusProcessing,
	"assigned":         StatusProcessing,
	"picked_up":        StatusProcessing,
	"picked up":        StatusProcessing,
	"out for delivery": StatusOutForDelivery,
	"out_for_delivery": StatusOutForDelivery,
	"shipped":          StatusOutForDelivery,
	"delivered":        StatusDelivered,
	"completed":        StatusDelivered,
	"cancelled":        StatusCancelled,
	"canceled":         StatusCancelled,
	"cancel":           StatusCancelled,
	"failed":           StatusCancelled,
}

// ParseStatus normalizes a raw backend status. Unknown non-empty values are kept verbatim.
func ParseStatus(raw string) OrderStatus {
	s := strings.TrimSpace(raw)
	if s == "" {
		return StatusUnknown
	}
	if st, ok := statusAliases[strings.ToLower(s)]; ok {
		return st
	}
	return OrderStatus(s)
}

// Known reports whether s is one of the canonical lifecycle statuses.
func (s OrderStatus) Known() bool {
	return s.rank() >= 0
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) rank() int {
	switch s {
	case StatusReceived:
		return 0
	case StatusProcessing:
		return 1
	case StatusOutForDelivery:
		return 2
	case StatusDelivered:
		return 3
	case StatusCancelled:
		return 4
	default:
		return -1
	}
}

// CanTransitionTo reports whether next is a legal forward move from s.
// Received → Processing → Out for Delivery → Delivered; Cancelled from any non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || !next.Known() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	if !s.Known() {
		return false
	}
	return next.rank() == s.rank()+1
}

// IsBackwardFrom reports whether moving from prev to s regresses the lifecycle.
func (s OrderStatus) IsBackwardFrom(prev OrderStatus) bool {
	if !s.Known() || !prev.Known() || s == StatusCancelled {
		return false
	}
	if prev.IsTerminal() {
		return s != prev
	}
	return s.rank() < prev.rank()
}
