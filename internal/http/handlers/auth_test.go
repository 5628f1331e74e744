package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/http/handlers"
	"driver-companion/internal/service/auth"
)

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	a := &stubAuth{
		loginFn: func(_ context.Context, creds domain.Credentials) (domain.Driver, error) {
			require.Equal(t, "d@example.com", creds.Email)
			require.Equal(t, "secret", creds.Password)
			return domain.Driver{ID: "d1", Name: "Dana"}, nil
		},
	}
	h, _ := newHandlers(handlers.Usecases{Auth: a})

	rr := do(t, h.Login, http.MethodPost, "/auth/login", `{"email":"d@example.com","password":"secret"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var d domain.Driver
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&d))
	require.Equal(t, "d1", d.ID)
}

func TestLogin_Errors(t *testing.T) {
	t.Parallel()

	a := &stubAuth{
		loginFn: func(context.Context, domain.Credentials) (domain.Driver, error) {
			return domain.Driver{}, &apperr.RemoteError{Op: "login", Status: 401, Kind: apperr.ErrUnauthorized}
		},
	}
	h, rec := newHandlers(handlers.Usecases{Auth: a})

	rr := do(t, h.Login, http.MethodPost, "/auth/login", `{"email":"d@example.com","password":"bad"}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"error":"session expired, please log in again","kind":"unauthorized"}`, rr.Body.String())
	require.True(t, rec.Has("request rejected"))

	rr = do(t, h.Login, http.MethodPost, "/auth/login", `{"email":"x","unknown":1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h.Login, http.MethodPost, "/auth/login", `{"email":"x"}{}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "trailing data")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	calls := 0
	a := &stubAuth{logoutFn: func(context.Context) error {
		calls++
		if calls == 2 {
			return &apperr.RemoteError{Op: "logout", Kind: apperr.ErrNetworkUnreachable}
		}
		return nil
	}}
	h, _ := newHandlers(handlers.Usecases{Auth: a})

	require.Equal(t, http.StatusNoContent, do(t, h.Logout, http.MethodPost, "/auth/logout", "").Code)
	require.Equal(t, http.StatusServiceUnavailable, do(t, h.Logout, http.MethodPost, "/auth/logout", "").Code)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	a := &stubAuth{statusFn: func(context.Context) (auth.Status, error) {
		return auth.Status{Authenticated: true, Driver: &domain.Driver{ID: "d1"}}, nil
	}}
	h, _ := newHandlers(handlers.Usecases{Auth: a})

	rr := do(t, h.Status, http.MethodGet, "/auth/status", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Authenticated bool           `json:"authenticated"`
		Driver        *domain.Driver `json:"driver"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.True(t, body.Authenticated)
	require.Equal(t, "d1", body.Driver.ID)
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	authenticated := false
	a := &stubAuth{statusFn: func(context.Context) (auth.Status, error) {
		return auth.Status{Authenticated: authenticated}, nil
	}}
	h, _ := newHandlers(handlers.Usecases{Auth: a})

	next := h.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	next.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"error":"login required"}`, rr.Body.String())

	authenticated = true
	rr = httptest.NewRecorder()
	next.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)
}
