package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Earnings aggregates the driver's income.
type Earnings struct {
	TodayEarnings   decimal.Decimal `json:"today_earnings"`
	TodayDeliveries int             `json:"today_deliveries"`
	WeekEarnings    decimal.Decimal `json:"week_earnings"`
	WeekDeliveries  int             `json:"week_deliveries"`
	MonthEarnings   decimal.Decimal `json:"month_earnings"`
	MonthDeliveries int             `json:"month_deliveries"`
	AvgPerDelivery  decimal.Decimal `json:"avg_per_delivery"`
}

// Payment is one entry of the driver's payment history.
type Payment struct {
	ID      string          `json:"id"`
	OrderID string          `json:"order_id,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status,omitempty"`
	Method  string          `json:"method,omitempty"`
	PaidAt  time.Time       `json:"paid_at"`
}

// Bill is a generated invoice.
type Bill struct {
	Format string `json:"format"`
	PDFURL string `json:"pdf_url,omitempty"`
	// Data is the JSON bill body for the json format.
	Data []byte `json:"data,omitempty"`
}

// PrinterSettings are passed through to the backend print job.
type PrinterSettings struct {
	PrinterName string `json:"printerName,omitempty"`
	Copies      int    `json:"copies,omitempty" validate:"gte=0,lte=10"`
	PaperSize   string `json:"paperSize,omitempty"`
}

// WorkflowEvent is emitted for every order workflow step.
type WorkflowEvent struct {
	ID         string      `json:"event_id"`
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id"`
	DriverID   string      `json:"driver_id,omitempty"`
	ProductID  string      `json:"product_id,omitempty"`
	Collected  *bool       `json:"collected,omitempty"`
	Status     OrderStatus `json:"status"`
	Outcome    string      `json:"outcome"`
	ErrorKind  string      `json:"error_kind,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Workflow event types.
const (
	EventOrderViewed       = "order_viewed"
	EventOrderAccepted     = "order_accepted"
	EventProductToggled    = "product_toggled"
	EventToggleReverted    = "toggle_reverted"
	EventOutForDelivery    = "out_for_delivery"
	EventDeliveryCompleted = "delivery_completed"
)

// Workflow event outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
