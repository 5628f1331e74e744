package orders

import (
	"context"
	"encoding/json"

	"driver-companion/internal/domain"
	"driver-companion/internal/gateway/backend"
)

// Reader is the read side of the backend. It is served by the retrying gateway.
type Reader interface {
	ListOrders(ctx context.Context) ([]json.RawMessage, error)
	CompletedOrders(ctx context.Context) (backend.CompletedPage, error)
	TodayEarnings(ctx context.Context) (domain.Earnings, error)
	PaymentHistory(ctx context.Context) ([]domain.Payment, error)
}

// Writer holds the order calls that must not be retried.
type Writer interface {
	GenerateBill(ctx context.Context, orderID, format string) (domain.Bill, error)
	PrintBill(ctx context.Context, orderID string, settings domain.PrinterSettings) error
	ReportIssue(ctx context.Context, orderID, description string) error
}
