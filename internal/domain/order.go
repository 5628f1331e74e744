package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the delivery recipient.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Financial holds order amounts.
type Financial struct {
	Total         decimal.Decimal `json:"total"`
	SubTotal      decimal.Decimal `json:"sub_total"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod string          `json:"payment_method"`
	Currency      string          `json:"currency"`
}

// Assignment describes who is responsible for delivering the order.
type Assignment struct {
	Assigned           bool   `json:"assigned"`
	AssignedToMe       bool   `json:"assigned_to_me"`
	RequiresAcceptance bool   `json:"requires_acceptance"`
	DriverID           string `json:"driver_id,omitempty"`
	DriverName         string `json:"driver_name,omitempty"`
}

// AssignedToOther reports whether another driver holds the order.
func (a Assignment) AssignedToOther() bool {
	return a.Assigned && !a.AssignedToMe
}

// Order is the canonical shape of a backend order, whatever schema generation it came from.
type Order struct {
	ID          string      `json:"id"`
	Invoice     string      `json:"invoice"`
	Status      OrderStatus `json:"status"`
	RawStatus   string      `json:"raw_status,omitempty"`
	Customer    Customer    `json:"customer"`
	Financial   Financial   `json:"financial"`
	Assignment  Assignment  `json:"assignment"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	DeliveredAt time.Time   `json:"delivered_at"`

	// Payload is the raw backend document the order was normalized from.
	Payload json.RawMessage `json:"-"`
}

// AcceptResult is the backend answer to an accept request.
type AcceptResult struct {
	AlreadyAssigned bool
	Message         string
}

// ToggleAck is the backend answer to a checklist toggle.
type ToggleAck struct {
	AllItemsCollected bool
	// Checklist is the server's checklist after the toggle, when it returns one.
	Checklist json.RawMessage
	Message   string
}

// CompletedOrders is the history page of delivered orders.
type CompletedOrders struct {
	Orders        []Order         `json:"orders"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}
