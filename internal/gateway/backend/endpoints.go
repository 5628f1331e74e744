package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
	"driver-companion/internal/session"
)

const (
	mobilePrefix    = "/mobile-delivery"
	personnelPrefix = "/delivery-personnel"
)

// Bill formats accepted by GenerateBill.
const (
	BillJSON = "json"
	BillPDF  = "pdf"
)

// CompletedPage is the raw history of delivered orders.
type CompletedPage struct {
	Orders        []json.RawMessage
	TotalEarnings decimal.Decimal
}

func orderPath(orderID, action string) string {
	p := mobilePrefix + "/orders/" + url.PathEscape(orderID)
	if action != "" {
		p += "/" + action
	}
	return p
}

// Login authenticates the driver and persists the resulting session.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error) {
	env, err := c.call(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   mobilePrefix + "/login",
		body: map[string]string{
			"email":    strings.TrimSpace(creds.Email),
			"password": creds.Password,
		},
		anonymous: true,
	})
	if err != nil {
		return domain.LoginResult{}, err
	}

	token := firstString(env, "token", "data.token")
	if token == "" {
		return domain.LoginResult{}, &apperr.RemoteError{Op: "login", Message: "response carries no token", Kind: apperr.ErrUnknown}
	}
	driverDoc := payload(env, "driver", "data.driver", "data")
	res := domain.LoginResult{
		Token:         token,
		RefreshToken:  firstString(env, "refreshToken", "data.refreshToken"),
		Driver:        parseDriver(driverDoc),
		DriverPayload: []byte(driverDoc.Raw),
	}

	if c.store != nil {
		err := c.store.Save(ctx, session.Session{
			Token:        res.Token,
			RefreshToken: res.RefreshToken,
			Driver:       json.RawMessage(driverDoc.Raw),
			SavedAt:      time.Now().UTC(),
		})
		if err != nil {
			return domain.LoginResult{}, fmt.Errorf("save session: %w", err)
		}
	}
	return res, nil
}

// Logout tells the backend the driver left and always clears the local session.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.call(ctx, request{op: "logout", method: http.MethodPost, path: mobilePrefix + "/logout"}); err != nil {
		c.logger.Warn("backend logout failed", logx.Err(err))
	}
	if c.store == nil {
		return nil
	}
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// GetProfile fetches the driver profile including the duty state.
func (c *Client) GetProfile(ctx context.Context) (domain.Driver, error) {
	env, err := c.call(ctx, request{op: "get profile", method: http.MethodGet, path: mobilePrefix + "/profile"})
	if err != nil {
		return domain.Driver{}, err
	}
	return parseDriver(payload(env, "data.driver", "data", "driver")), nil
}

// UpdateProfile stores the editable profile fields and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Driver, error) {
	env, err := c.call(ctx, request{op: "update profile", method: http.MethodPut, path: mobilePrefix + "/profile", body: upd})
	if err != nil {
		return domain.Driver{}, err
	}
	return parseDriver(payload(env, "data.driver", "data", "driver")), nil
}

// ClockIn starts the shift. loc may be nil when no position is known.
func (c *Client) ClockIn(ctx context.Context, loc *domain.Location) error {
	var body any = struct{}{}
	if loc != nil {
		body = loc
	}
	_, err := c.call(ctx, request{op: "clock in", method: http.MethodPost, path: mobilePrefix + "/clock-in", body: body})
	return err
}

// ClockOut ends the shift.
func (c *Client) ClockOut(ctx context.Context) error {
	_, err := c.call(ctx, request{op: "clock out", method: http.MethodPost, path: mobilePrefix + "/clock-out"})
	return err
}

// BreakIn starts a break.
func (c *Client) BreakIn(ctx context.Context) error {
	_, err := c.call(ctx, request{op: "break in", method: http.MethodPost, path: mobilePrefix + "/break-in"})
	return err
}

// BreakOut ends a break.
func (c *Client) BreakOut(ctx context.Context) error {
	_, err := c.call(ctx, request{op: "break out", method: http.MethodPost, path: mobilePrefix + "/break-out"})
	return err
}

// UpdateLocation reports the driver position.
func (c *Client) UpdateLocation(ctx context.Context, loc domain.Location) error {
	_, err := c.call(ctx, request{op: "update location", method: http.MethodPost, path: personnelPrefix + "/location", body: loc})
	return err
}

// ListOrders returns the raw order documents visible to the driver.
func (c *Client) ListOrders(ctx context.Context) ([]json.RawMessage, error) {
	env, err := c.call(ctx, request{op: "list orders", method: http.MethodGet, path: mobilePrefix + "/orders"})
	if err != nil {
		return nil, err
	}
	return rawList(payload(env, "data.orders", "data", "orders")), nil
}

// GetOrder returns the raw document of one order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	env, err := c.call(ctx, request{op: "get order", method: http.MethodGet, path: orderPath(orderID, "")})
	if err != nil {
		return nil, err
	}
	doc := payload(env, "data.order", "data", "order")
	if !doc.IsObject() {
		return nil, &apperr.RemoteError{Op: "get order", Message: "response carries no order", Kind: apperr.ErrNotFound}
	}
	return json.RawMessage(doc.Raw), nil
}

// AcceptOrder claims the order for the driver. A 409 means another driver holds it.
func (c *Client) AcceptOrder(ctx context.Context, orderID string) (domain.AcceptResult, error) {
	env, err := c.call(ctx, request{op: "accept order", method: http.MethodPost, path: orderPath(orderID, "accept")})
	if err != nil {
		return domain.AcceptResult{}, err
	}
	return domain.AcceptResult{
		AlreadyAssigned: env.Get("data.alreadyAssigned").Bool() || env.Get("alreadyAssigned").Bool(),
		Message:         serverMessage(env),
	}, nil
}

// ToggleProduct marks one checklist item collected or not.
func (c *Client) ToggleProduct(ctx context.Context, orderID, productID string, collected bool, notes string) (domain.ToggleAck, error) {
	body := map[string]any{"productId": productID, "collected": collected}
	if notes != "" {
		body["notes"] = notes
	}
	env, err := c.call(ctx, request{op: "toggle product", method: http.MethodPost, path: orderPath(orderID, "toggle-product"), body: body})
	if err != nil {
		return domain.ToggleAck{}, err
	}
	ack := domain.ToggleAck{
		AllItemsCollected: env.Get("data.allItemsCollected").Bool() || env.Get("allItemsCollected").Bool(),
		Message:           serverMessage(env),
	}
	for _, p := range []string{"data.productChecklist", "productChecklist"} {
		if v := env.Get(p); v.IsArray() {
			ack.Checklist = json.RawMessage(v.Raw)
			break
		}
	}
	return ack, nil
}

// MarkOutForDelivery moves the order to Out for Delivery.
func (c *Client) MarkOutForDelivery(ctx context.Context, orderID string) error {
	_, err := c.call(ctx, request{op: "mark out for delivery", method: http.MethodPost, path: orderPath(orderID, "out-for-delivery")})
	return err
}

// CompleteDelivery confirms the hand-over with the customer's verification code.
func (c *Client) CompleteDelivery(ctx context.Context, orderID, code string) error {
	_, err := c.call(ctx, request{
		op:     "complete delivery",
		method: http.MethodPost,
		path:   orderPath(orderID, "complete"),
		body:   map[string]string{"verificationCode": code},
	})
	if err == nil {
		return nil
	}
	// a rejected code arrives either as a 4xx or as a 2xx envelope with success false
	status := apperr.Status(err)
	if errors.Is(err, apperr.ErrValidation) || (status >= 200 && status < 300) {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidCode, err)
	}
	return err
}

// GenerateBill renders the order invoice in the json or pdf format.
func (c *Client) GenerateBill(ctx context.Context, orderID, format string) (domain.Bill, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = BillJSON
	}
	if format != BillJSON && format != BillPDF {
		return domain.Bill{}, fmt.Errorf("bill format %q: %w", format, apperr.ErrValidation)
	}
	env, err := c.call(ctx, request{
		op:     "generate bill",
		method: http.MethodGet,
		path:   orderPath(orderID, "bill"),
		query:  url.Values{"format": []string{format}},
	})
	if err != nil {
		return domain.Bill{}, err
	}
	bill := domain.Bill{Format: format, PDFURL: firstString(env, "data.pdfUrl", "pdfUrl")}
	if data := payload(env, "data"); data.IsObject() {
		bill.Data = []byte(data.Raw)
	}
	return bill, nil
}

// PrintBill asks the backend to send the invoice to a printer.
func (c *Client) PrintBill(ctx context.Context, orderID string, settings domain.PrinterSettings) error {
	_, err := c.call(ctx, request{
		op:     "print bill",
		method: http.MethodPost,
		path:   orderPath(orderID, "print-bill"),
		body:   map[string]any{"printerSettings": settings},
	})
	return err
}

// TodayEarnings returns the driver income summary.
func (c *Client) TodayEarnings(ctx context.Context) (domain.Earnings, error) {
	env, err := c.call(ctx, request{op: "today earnings", method: http.MethodGet, path: mobilePrefix + "/earnings/today"})
	if err != nil {
		return domain.Earnings{}, err
	}
	return parseEarnings(payload(env, "data")), nil
}

// CompletedOrders returns the delivered orders with their total earnings.
func (c *Client) CompletedOrders(ctx context.Context) (CompletedPage, error) {
	env, err := c.call(ctx, request{op: "completed orders", method: http.MethodGet, path: mobilePrefix + "/orders/completed"})
	if err != nil {
		return CompletedPage{}, err
	}
	return CompletedPage{
		Orders:        rawList(payload(env, "orders", "data.orders", "data")),
		TotalEarnings: firstDecimal(env, "totalEarnings", "data.totalEarnings"),
	}, nil
}

// PaymentHistory returns the driver's payment entries.
func (c *Client) PaymentHistory(ctx context.Context) ([]domain.Payment, error) {
	env, err := c.call(ctx, request{op: "payment history", method: http.MethodGet, path: personnelPrefix + "/payments"})
	if err != nil {
		return nil, err
	}
	list := payload(env, "data.payments", "data", "payments")
	out := make([]domain.Payment, 0)
	if list.IsArray() {
		for _, v := range list.Array() {
			out = append(out, parsePayment(v))
		}
	}
	return out, nil
}

// ReportIssue files a delivery problem for the order.
func (c *Client) ReportIssue(ctx context.Context, orderID, description string) error {
	_, err := c.call(ctx, request{
		op:     "report issue",
		method: http.MethodPost,
		path:   orderPath(orderID, "issue"),
		body:   map[string]string{"description": description},
	})
	return err
}
