package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"driver-companion/internal/apperr"
	"driver-companion/internal/logx"
	"driver-companion/internal/session"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
	refreshKey     = "refresh"
)

var errNoRefreshToken = errors.New("no refresh token")

// Config holds the connection settings of the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRequestID overrides the request id generator.
func WithRequestID(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Client talks to the delivery backend REST API on behalf of the logged in driver.
type Client struct {
	baseURL string
	http    *http.Client
	store   session.Store
	logger  logx.Logger
	newID   func() string

	refreshes singleflight.Group

	mu             sync.RWMutex
	onUnauthorized []func()
}

// New creates a Client. The session store supplies and receives the auth tokens.
func New(cfg Config, store session.Store, logger logx.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logx.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   store,
		logger:  logger,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers fn to run whenever the session is dropped after a failed refresh.
func (c *Client) OnUnauthorized(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
	c.mu.Unlock()
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	// anonymous requests carry no token and never trigger a refresh
	anonymous bool
}

type response struct {
	status int
	body   []byte
}

// call performs req and returns the decoded envelope of a successful answer.
func (c *Client) call(ctx context.Context, req request) (gjson.Result, error) {
	token := ""
	if !req.anonymous {
		token = c.currentToken(ctx)
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return gjson.Result{}, err
	}

	if resp.status == http.StatusUnauthorized && !req.anonymous {
		fresh, rerr := c.refresh(ctx, token)
		if rerr != nil && ctx.Err() != nil {
			return gjson.Result{}, fmt.Errorf("%s: %w", req.op, ctx.Err())
		}
		if rerr != nil {
			c.invalidate(ctx, req.op, rerr)
			return gjson.Result{}, remoteError(req.op, resp)
		}
		resp, err = c.send(ctx, req, fresh)
		if err != nil {
			return gjson.Result{}, err
		}
		if resp.status == http.StatusUnauthorized {
			c.invalidate(ctx, req.op, errors.New("token rejected after refresh"))
			return gjson.Result{}, remoteError(req.op, resp)
		}
	}

	return decode(req.op, resp)
}

func (c *Client) currentToken(ctx context.Context) string {
	if c.store == nil {
		return ""
	}
	s, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			c.logger.Warn("load session failed", logx.Err(err))
		}
		return ""
	}
	return s.Token
}

func (c *Client) send(ctx context.Context, req request, token string) (response, error) {
	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return response{}, fmt.Errorf("%s: encode body: %w", req.op, err)
		}
		body = bytes.NewReader(raw)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return response{}, fmt.Errorf("%s: build request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", c.newID())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return response{}, fmt.Errorf("%s: %w", req.op, ctxErr)
		}
		return response{}, &apperr.RemoteError{Op: req.op, Message: err.Error(), Kind: apperr.ErrNetworkUnreachable}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return response{}, fmt.Errorf("%s: %w", req.op, ctxErr)
		}
		return response{}, &apperr.RemoteError{Op: req.op, Status: httpResp.StatusCode, Message: err.Error(), Kind: apperr.ErrNetworkUnreachable}
	}
	return response{status: httpResp.StatusCode, body: raw}, nil
}

// refresh exchanges the refresh token for a new access token. Concurrent callers share one exchange.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	ch := c.refreshes.DoChan(refreshKey, func() (any, error) {
		return c.exchange(context.WithoutCancel(ctx), stale)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) exchange(ctx context.Context, stale string) (string, error) {
	if c.store == nil {
		return "", errNoRefreshToken
	}
	s, err := c.store.Load(ctx)
	if err != nil {
		return "", err
	}
	// another caller already rotated the token
	if s.Token != "" && s.Token != stale {
		return s.Token, nil
	}
	if strings.TrimSpace(s.RefreshToken) == "" {
		return "", errNoRefreshToken
	}

	env, err := c.call(ctx, request{
		op:        "refresh token",
		method:    http.MethodPost,
		path:      "/auth/refresh",
		body:      map[string]string{"refreshToken": s.RefreshToken},
		anonymous: true,
	})
	if err != nil {
		return "", err
	}
	token := firstString(env, "data.token", "token")
	if token == "" {
		return "", &apperr.RemoteError{Op: "refresh token", Message: "response carries no token", Kind: apperr.ErrUnauthorized}
	}

	s.Token = token
	if rt := firstString(env, "data.refreshToken", "refreshToken"); rt != "" {
		s.RefreshToken = rt
	}
	s.SavedAt = time.Now().UTC()
	if err := c.store.Save(ctx, *s); err != nil {
		return "", fmt.Errorf("save refreshed session: %w", err)
	}
	c.logger.Info("session token refreshed")
	return token, nil
}

// invalidate drops the local session after the backend refused it for good.
func (c *Client) invalidate(ctx context.Context, op string, cause error) {
	if c.store != nil {
		if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
			c.logger.Error("clear session failed", logx.String("op", op), logx.Err(err))
		}
	}
	c.logger.Warn("session invalidated",
		logx.String("op", op),
		logx.Err(cause),
	)

	c.mu.RLock()
	hooks := append([]func(){}, c.onUnauthorized...)
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

func decode(op string, resp response) (gjson.Result, error) {
	if apperr.FromStatus(resp.status) != nil {
		return gjson.Result{}, remoteError(op, resp)
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(resp.body) {
		return gjson.Result{}, &apperr.RemoteError{Op: op, Status: resp.status, Message: "malformed response body", Kind: apperr.ErrUnknown}
	}
	env := gjson.ParseBytes(resp.body)
	if ok := env.Get("success"); ok.Exists() && !ok.Bool() {
		return gjson.Result{}, &apperr.RemoteError{Op: op, Status: resp.status, Message: serverMessage(env), Kind: apperr.ErrUnknown}
	}
	return env, nil
}

func remoteError(op string, resp response) error {
	msg := ""
	if gjson.ValidBytes(resp.body) {
		msg = serverMessage(gjson.ParseBytes(resp.body))
	}
	return &apperr.RemoteError{Op: op, Status: resp.status, Message: msg, Kind: apperr.FromStatus(resp.status)}
}

func serverMessage(env gjson.Result) string {
	return firstString(env, "message", "error", "error.message")
}
