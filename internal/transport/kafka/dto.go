package kafka

import (
	"strings"
	"time"

	"driver-companion/internal/domain"
)

// EventDTO is the wire form of domain.WorkflowEvent.
type EventDTO struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	DriverID   string    `json:"driver_id,omitempty"`
	ProductID  string    `json:"product_id,omitempty"`
	Collected  *bool     `json:"collected,omitempty"`
	Status     string    `json:"status"`
	Outcome    string    `json:"outcome"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToDomain converts EventDTO to domain.WorkflowEvent.
func ToDomain(dto EventDTO) domain.WorkflowEvent {
	return domain.WorkflowEvent{
		ID:         strings.TrimSpace(dto.EventID),
		Type:       strings.TrimSpace(dto.Type),
		OrderID:    strings.TrimSpace(dto.OrderID),
		DriverID:   strings.TrimSpace(dto.DriverID),
		ProductID:  strings.TrimSpace(dto.ProductID),
		Collected:  dto.Collected,
		Status:     domain.OrderStatus(strings.TrimSpace(dto.Status)),
		Outcome:    strings.TrimSpace(dto.Outcome),
		ErrorKind:  strings.TrimSpace(dto.ErrorKind),
		OccurredAt: dto.OccurredAt.UTC(),
	}
}

// FromDomain converts domain.WorkflowEvent to its wire form.
func FromDomain(e domain.WorkflowEvent) EventDTO {
	return EventDTO{
		EventID:    e.ID,
		Type:       e.Type,
		OrderID:    e.OrderID,
		DriverID:   e.DriverID,
		ProductID:  e.ProductID,
		Collected:  e.Collected,
		Status:     string(e.Status),
		Outcome:    e.Outcome,
		ErrorKind:  e.ErrorKind,
		OccurredAt: e.OccurredAt.UTC(),
	}
}
