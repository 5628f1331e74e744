package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"driver-companion/internal/domain"
	"driver-companion/internal/http/handlers"
	"driver-companion/internal/service/auth"
	"driver-companion/internal/service/orders"
	testlog "driver-companion/internal/testutil"
)

type stubAuth struct {
	loginFn  func(ctx context.Context, creds domain.Credentials) (domain.Driver, error)
	logoutFn func(ctx context.Context) error
	statusFn func(ctx context.Context) (auth.Status, error)
}

func (s *stubAuth) Login(ctx context.Context, creds domain.Credentials) (domain.Driver, error) {
	return s.loginFn(ctx, creds)
}

func (s *stubAuth) Logout(ctx context.Context) error { return s.logoutFn(ctx) }

func (s *stubAuth) Status(ctx context.Context) (auth.Status, error) { return s.statusFn(ctx) }

type stubShift struct {
	profileFn       func(ctx context.Context) (domain.Driver, error)
	updateProfileFn func(ctx context.Context, upd domain.ProfileUpdate) (domain.Driver, error)
	clockInFn       func(ctx context.Context, loc *domain.Location) error
	clockOutFn      func(ctx context.Context) error
	startBreakFn    func(ctx context.Context) error
	endBreakFn      func(ctx context.Context) error
}

func (s *stubShift) Profile(ctx context.Context) (domain.Driver, error) { return s.profileFn(ctx) }

func (s *stubShift) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Driver, error) {
	return s.updateProfileFn(ctx, upd)
}

func (s *stubShift) ClockIn(ctx context.Context, loc *domain.Location) error {
	return s.clockInFn(ctx, loc)
}

func (s *stubShift) ClockOut(ctx context.Context) error { return s.clockOutFn(ctx) }

func (s *stubShift) StartBreak(ctx context.Context) error { return s.startBreakFn(ctx) }

func (s *stubShift) EndBreak(ctx context.Context) error { return s.endBreakFn(ctx) }

type stubSink struct{ pushed []domain.Location }

func (s *stubSink) Push(loc domain.Location) { s.pushed = append(s.pushed, loc) }

type stubOrders struct {
	listFn      func(ctx context.Context, scope orders.Scope) ([]domain.OrderView, error)
	completedFn func(ctx context.Context) (domain.CompletedOrders, error)
	earningsFn  func(ctx context.Context) (domain.Earnings, error)
	paymentsFn  func(ctx context.Context) ([]domain.Payment, error)
	billFn      func(ctx context.Context, orderID, format string) (domain.Bill, error)
	printFn     func(ctx context.Context, orderID string, settings domain.PrinterSettings) error
	issueFn     func(ctx context.Context, orderID, description string) error
}

func (s *stubOrders) List(ctx context.Context, scope orders.Scope) ([]domain.OrderView, error) {
	return s.listFn(ctx, scope)
}

func (s *stubOrders) Completed(ctx context.Context) (domain.CompletedOrders, error) {
	return s.completedFn(ctx)
}

func (s *stubOrders) Earnings(ctx context.Context) (domain.Earnings, error) { return s.earningsFn(ctx) }

func (s *stubOrders) Payments(ctx context.Context) ([]domain.Payment, error) {
	return s.paymentsFn(ctx)
}

func (s *stubOrders) Bill(ctx context.Context, orderID, format string) (domain.Bill, error) {
	return s.billFn(ctx, orderID, format)
}

func (s *stubOrders) PrintBill(ctx context.Context, orderID string, settings domain.PrinterSettings) error {
	return s.printFn(ctx, orderID, settings)
}

func (s *stubOrders) ReportIssue(ctx context.Context, orderID, description string) error {
	return s.issueFn(ctx, orderID, description)
}

type stubWorkflow struct {
	openFn     func(ctx context.Context, orderID string) (domain.OrderView, error)
	acceptFn   func(ctx context.Context, orderID string) (domain.AcceptResult, domain.OrderView, error)
	toggleFn   func(ctx context.Context, orderID, productID string, collected bool) (domain.OrderView, error)
	dispatchFn func(ctx context.Context, orderID string) (domain.OrderView, error)
	completeFn func(ctx context.Context, orderID, code string) (domain.OrderView, error)
	closed     []string
}

func (s *stubWorkflow) OpenView(ctx context.Context, orderID string) (domain.OrderView, error) {
	return s.openFn(ctx, orderID)
}

func (s *stubWorkflow) AcceptOrder(ctx context.Context, orderID string) (domain.AcceptResult, domain.OrderView, error) {
	return s.acceptFn(ctx, orderID)
}

func (s *stubWorkflow) ToggleProduct(ctx context.Context, orderID, productID string, collected bool) (domain.OrderView, error) {
	return s.toggleFn(ctx, orderID, productID, collected)
}

func (s *stubWorkflow) MarkOutForDelivery(ctx context.Context, orderID string) (domain.OrderView, error) {
	return s.dispatchFn(ctx, orderID)
}

func (s *stubWorkflow) CompleteDelivery(ctx context.Context, orderID, code string) (domain.OrderView, error) {
	return s.completeFn(ctx, orderID, code)
}

func (s *stubWorkflow) Close(orderID string) { s.closed = append(s.closed, orderID) }

func newHandlers(uc handlers.Usecases) (*handlers.Handlers, *testlog.Recorder) {
	rec := testlog.New()
	return handlers.New(rec.Logger(), uc), rec
}

// withParams attaches chi URL params the way the router would.
func withParams(req *http.Request, kv ...string) *http.Request {
	rc := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rc.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func do(t *testing.T, fn http.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req = withParams(req, params...)
	rr := httptest.NewRecorder()
	fn(rr, req)
	return rr
}
