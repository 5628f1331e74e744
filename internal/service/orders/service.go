package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
	"driver-companion/internal/workflow"
)

// Service lists orders and serves the driver's order history, earnings and bills.
type Service struct {
	reader   Reader
	writer   Writer
	engine   *workflow.Engine
	validate *validator.Validate
	logger   logx.Logger
	fetches  singleflight.Group

	operationTimeout time.Duration
}

// NewService creates an orders Service.
func NewService(r Reader, w Writer, engine *workflow.Engine, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if engine == nil {
		engine = workflow.New()
	}
	return &Service{
		reader:           r,
		writer:           w,
		engine:           engine,
		validate:         validator.New(),
		logger:           logger,
		operationTimeout: timeout,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns the views of the orders in scope, newest first as the backend sends them.
// Concurrent callers share one backend fetch.
func (s *Service) List(ctx context.Context, scope Scope) ([]domain.OrderView, error) {
	ch := s.fetches.DoChan("orders", func() (any, error) {
		fctx, cancel := s.withTimeout(context.WithoutCancel(ctx))
		defer cancel()
		return s.reader.ListOrders(fctx)
	})

	var raw []json.RawMessage
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		raw = res.Val.([]json.RawMessage)
	}

	out := make([]domain.OrderView, 0, len(raw))
	for _, doc := range raw {
		view := s.engine.View(doc, domain.Flags{})
		if scope.includes(view.Order) {
			out = append(out, view)
		}
	}
	return out, nil
}

// Completed returns the delivered orders, normalized, with the total earned.
func (s *Service) Completed(ctx context.Context) (domain.CompletedOrders, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	page, err := s.reader.CompletedOrders(ctx)
	if err != nil {
		return domain.CompletedOrders{}, err
	}
	out := domain.CompletedOrders{
		Orders:        make([]domain.Order, 0, len(page.Orders)),
		TotalEarnings: page.TotalEarnings,
	}
	for _, doc := range page.Orders {
		out.Orders = append(out.Orders, s.engine.Normalize(doc))
	}
	return out, nil
}

// Earnings returns the driver's income summary.
func (s *Service) Earnings(ctx context.Context) (domain.Earnings, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.reader.TodayEarnings(ctx)
}

// Payments returns the payment history.
func (s *Service) Payments(ctx context.Context) ([]domain.Payment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.reader.PaymentHistory(ctx)
}

// Bill generates the bill of an order in the json or pdf format.
func (s *Service) Bill(ctx context.Context, orderID, format string) (domain.Bill, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.Bill{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.writer.GenerateBill(ctx, orderID, format)
}

// PrintBill asks the backend to print the bill of an order.
func (s *Service) PrintBill(ctx context.Context, orderID string, settings domain.PrinterSettings) error {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return err
	}
	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("printer settings: %w", apperr.ErrValidation)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.writer.PrintBill(ctx, orderID, settings)
}

// ReportIssue files a delivery problem for an order.
func (s *Service) ReportIssue(ctx context.Context, orderID, description string) error {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return err
	}
	description = strings.TrimSpace(description)
	if err := s.validate.Var(description, "required,max=1000"); err != nil {
		return fmt.Errorf("issue description: %w", apperr.ErrValidation)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.writer.ReportIssue(ctx, orderID, description); err != nil {
		return err
	}
	s.logger.Info("delivery issue reported", logx.OrderID(orderID))
	return nil
}

func validateOrderID(raw string) (string, error) {
	orderID := strings.TrimSpace(raw)
	if orderID == "" {
		return "", fmt.Errorf("order id is required: %w", apperr.ErrValidation)
	}
	return orderID, nil
}
