package handlers

import (
	"context"

	"driver-companion/internal/domain"
	"driver-companion/internal/service/auth"
	"driver-companion/internal/service/orders"
)

// AuthUsecase is the login surface.
type AuthUsecase interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Driver, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (auth.Status, error)
}

// ShiftUsecase is the duty and profile surface.
type ShiftUsecase interface {
	Profile(ctx context.Context) (domain.Driver, error)
	UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Driver, error)
	ClockIn(ctx context.Context, loc *domain.Location) error
	ClockOut(ctx context.Context) error
	StartBreak(ctx context.Context) error
	EndBreak(ctx context.Context) error
}

// LocationSink receives fixes reported by the device.
type LocationSink interface {
	Push(loc domain.Location)
}

// OrdersUsecase is the order list and earnings surface.
type OrdersUsecase interface {
	List(ctx context.Context, scope orders.Scope) ([]domain.OrderView, error)
	Completed(ctx context.Context) (domain.CompletedOrders, error)
	Earnings(ctx context.Context) (domain.Earnings, error)
	Payments(ctx context.Context) ([]domain.Payment, error)
	Bill(ctx context.Context, orderID, format string) (domain.Bill, error)
	PrintBill(ctx context.Context, orderID string, settings domain.PrinterSettings) error
	ReportIssue(ctx context.Context, orderID, description string) error
}

// WorkflowUsecase drives the workflow of a single order.
type WorkflowUsecase interface {
	OpenView(ctx context.Context, orderID string) (domain.OrderView, error)
	AcceptOrder(ctx context.Context, orderID string) (domain.AcceptResult, domain.OrderView, error)
	ToggleProduct(ctx context.Context, orderID, productID string, collected bool) (domain.OrderView, error)
	MarkOutForDelivery(ctx context.Context, orderID string) (domain.OrderView, error)
	CompleteDelivery(ctx context.Context, orderID, code string) (domain.OrderView, error)
	Close(orderID string)
}
