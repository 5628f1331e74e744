package domain

import "time"

// OrderState is the latest known workflow position of an order, folded from its events.
type OrderState struct {
	OrderID   string      `json:"order_id"`
	DriverID  string      `json:"driver_id,omitempty"`
	Status    OrderStatus `json:"status"`
	LastEvent string      `json:"last_event"`
	Events    int         `json:"events"`
	Failures  int         `json:"failures"`
	UpdatedAt time.Time   `json:"updated_at"`
}
