package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/session"
	testlog "driver-companion/internal/testutil"
)

func newTestClient(t *testing.T, h http.Handler, store session.Store) (*Client, *testlog.Recorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rec := testlog.New()
	return New(Config{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second}, store, rec.Logger()), rec
}

func storeWith(t *testing.T, token, refresh string) *session.MemoryStore {
	t.Helper()
	st := session.NewMemoryStore()
	require.NoError(t, st.Save(context.Background(), session.Session{Token: token, RefreshToken: refresh}))
	return st
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestLogin_PersistsSession(t *testing.T) {
	t.Parallel()

	var got map[string]string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mobile-delivery/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeBody(w, http.StatusOK, `{"success":true,"token":"tok-1","refreshToken":"ref-1",
			"driver":{"_id":"d1","email":"a@b.c","name":{"firstName":"Omar","lastName":"Ali"},
			"deliveryInfo":{"isOnDuty":true,"availability":"Available"}}}`)
	})
	st := session.NewMemoryStore()
	c, _ := newTestClient(t, h, st)

	res, err := c.Login(context.Background(), domain.Credentials{Email: "  a@b.c ", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "a@b.c", got["email"])
	require.Equal(t, "tok-1", res.Token)
	require.Equal(t, "Omar Ali", res.Driver.Name)
	require.Equal(t, "Available", res.Driver.Duty.Label())

	s, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", s.Token)
	require.Equal(t, "ref-1", s.RefreshToken)
	require.JSONEq(t, string(res.DriverPayload), string(s.Driver))
}

func TestLogin_WrongCredentials(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, `{"success":false,"message":"Invalid email or password"}`)
	})
	st := session.NewMemoryStore()
	c, _ := newTestClient(t, h, st)

	_, err := c.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "bad"})
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	require.Equal(t, "Invalid email or password", apperr.Message(err))
}

func TestCall_InjectsTokenAndRequestID(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "/api/mobile-delivery/orders/o%2F1", r.URL.EscapedPath())
		writeBody(w, http.StatusOK, `{"success":true,"data":{"_id":"o/1","status":"Pending"}}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	raw, err := c.GetOrder(context.Background(), "o/1")
	require.NoError(t, err)
	require.JSONEq(t, `{"_id":"o/1","status":"Pending"}`, string(raw))
}

func TestCall_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   error
		msg    string
	}{
		{"conflict", http.StatusConflict, `{"message":"Order is already assigned to another driver"}`, apperr.ErrConflict, "Order is already assigned to another driver"},
		{"not found", http.StatusNotFound, `{"error":"no such order"}`, apperr.ErrNotFound, "no such order"},
		{"server", http.StatusInternalServerError, `oops`, apperr.ErrServer, ""},
		{"success false", http.StatusOK, `{"success":false,"message":"cannot accept now"}`, apperr.ErrUnknown, "cannot accept now"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeBody(w, tc.status, tc.body)
			})
			c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

			_, err := c.AcceptOrder(context.Background(), "o1")
			require.ErrorIs(t, err, tc.want)
			require.Equal(t, tc.msg, apperr.Message(err))
		})
	}
}

func TestCall_NetworkUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, Timeout: time.Second}, session.NewMemoryStore(), nil)
	_, err := c.ListOrders(context.Background())
	require.ErrorIs(t, err, apperr.ErrNetworkUnreachable)
}

func TestCall_CanceledContextPassesThrough(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"success":true,"data":[]}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListOrders(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, apperr.ErrNetworkUnreachable)
}

func TestCall_RefreshesOnceAndRetries(t *testing.T) {
	t.Parallel()

	var refreshes, orders int32
	h := http.NewServeMux()
	h.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "ref", body["refreshToken"])
		writeBody(w, http.StatusOK, `{"success":true,"data":{"token":"fresh"}}`)
	})
	h.HandleFunc("/api/mobile-delivery/orders", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&orders, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeBody(w, http.StatusUnauthorized, `{"message":"jwt expired"}`)
			return
		}
		writeBody(w, http.StatusOK, `{"success":true,"data":[{"_id":"o1"},{"_id":"o2"}]}`)
	})
	st := storeWith(t, "stale", "ref")
	c, _ := newTestClient(t, h, st)

	list, err := c.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.EqualValues(t, 1, atomic.LoadInt32(&refreshes))
	require.EqualValues(t, 2, atomic.LoadInt32(&orders))

	s, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh", s.Token)
	require.Equal(t, "ref", s.RefreshToken)
}

func TestCall_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	t.Parallel()

	var refreshes int32
	h := http.NewServeMux()
	h.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		time.Sleep(20 * time.Millisecond)
		writeBody(w, http.StatusOK, `{"token":"fresh"}`)
	})
	h.HandleFunc("/api/mobile-delivery/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeBody(w, http.StatusUnauthorized, `{}`)
			return
		}
		writeBody(w, http.StatusOK, `{"success":true,"data":{"_id":"d1","name":"Sara"}}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "stale", "ref"))

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := c.GetProfile(context.Background())
			if err == nil && d.Name != "Sara" {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&refreshes))
}

func TestCall_FailedRefreshClearsSession(t *testing.T) {
	t.Parallel()

	h := http.NewServeMux()
	h.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, `{"message":"refresh token revoked"}`)
	})
	h.HandleFunc("/api/mobile-delivery/orders", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, `{"message":"jwt expired"}`)
	})
	st := storeWith(t, "stale", "ref")
	c, rec := newTestClient(t, h, st)

	var hooked int32
	c.OnUnauthorized(func() { atomic.AddInt32(&hooked, 1) })

	_, err := c.ListOrders(context.Background())
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	require.EqualValues(t, 1, atomic.LoadInt32(&hooked))
	require.True(t, rec.Has("session invalidated"))

	_, err = st.Load(context.Background())
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestCall_NoRefreshTokenClearsSession(t *testing.T) {
	t.Parallel()

	var refreshes int32
	h := http.NewServeMux()
	h.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
	})
	h.HandleFunc("/api/mobile-delivery/earnings/today", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, `{}`)
	})
	st := storeWith(t, "stale", "")
	c, _ := newTestClient(t, h, st)

	_, err := c.TodayEarnings(context.Background())
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	require.Zero(t, atomic.LoadInt32(&refreshes))

	_, err = st.Load(context.Background())
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestToggleProduct(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mobile-delivery/orders/o1/toggle-product", r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "p1", body["productId"])
		assert.Equal(t, true, body["collected"])
		_, hasNotes := body["notes"]
		assert.False(t, hasNotes)
		writeBody(w, http.StatusOK, `{"success":true,"message":"ok",
			"data":{"allItemsCollected":true,"productChecklist":[{"productId":"p1","collected":true}]}}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	ack, err := c.ToggleProduct(context.Background(), "o1", "p1", true, "")
	require.NoError(t, err)
	require.True(t, ack.AllItemsCollected)
	require.JSONEq(t, `[{"productId":"p1","collected":true}]`, string(ack.Checklist))
	require.Equal(t, "ok", ack.Message)
}

func TestAcceptOrder_AlreadyAssigned(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"success":true,"data":{"alreadyAssigned":true},"message":"Order already yours"}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	res, err := c.AcceptOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.True(t, res.AlreadyAssigned)
	require.Equal(t, "Order already yours", res.Message)
}

func TestCompleteDelivery_RejectedCode(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "1234", body["verificationCode"])
		writeBody(w, http.StatusBadRequest, `{"success":false,"message":"Invalid verification code"}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	err := c.CompleteDelivery(context.Background(), "o1", "1234")
	require.ErrorIs(t, err, apperr.ErrInvalidCode)
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Equal(t, "Invalid verification code", apperr.Message(err))
}

func TestCompleteDelivery_UnsuccessfulEnvelopeIsInvalidCode(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"success":false,"message":"Verification code does not match"}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	err := c.CompleteDelivery(context.Background(), "o1", "9999")
	require.ErrorIs(t, err, apperr.ErrInvalidCode)
	require.Equal(t, "validation_failed", apperr.Kind(err))
	require.Equal(t, "Verification code does not match", apperr.Message(err))
}

func TestCompleteDelivery_ServerFailureKeepsKind(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusBadGateway, `{"message":"upstream down"}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	err := c.CompleteDelivery(context.Background(), "o1", "1234")
	require.ErrorIs(t, err, apperr.ErrServer)
	require.NotErrorIs(t, err, apperr.ErrInvalidCode)
}

func TestGenerateBill(t *testing.T) {
	t.Parallel()

	var calls int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "pdf", r.URL.Query().Get("format"))
		writeBody(w, http.StatusOK, `{"success":true,"data":{"pdfUrl":"https://cdn/bill.pdf"}}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	bill, err := c.GenerateBill(context.Background(), "o1", "PDF")
	require.NoError(t, err)
	require.Equal(t, BillPDF, bill.Format)
	require.Equal(t, "https://cdn/bill.pdf", bill.PDFURL)

	_, err = c.GenerateBill(context.Background(), "o1", "docx")
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestCompletedOrdersAndEarnings(t *testing.T) {
	t.Parallel()

	h := http.NewServeMux()
	h.HandleFunc("/api/mobile-delivery/orders/completed", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"success":true,"orders":[{"_id":"o1"},"junk"],"totalEarnings":"42.50"}`)
	})
	h.HandleFunc("/api/mobile-delivery/earnings/today", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"success":true,"data":{"todayEarnings":30,"todayDeliveries":4}}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	page, err := c.CompletedOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.Equal(t, "42.5", page.TotalEarnings.String())

	e, err := c.TodayEarnings(context.Background())
	require.NoError(t, err)
	require.Equal(t, "30", e.TodayEarnings.String())
	require.Equal(t, 4, e.TodayDeliveries)
	require.Equal(t, "7.5", e.AvgPerDelivery.String())
	require.True(t, e.WeekEarnings.IsZero())
}

func TestLogout_ClearsEvenWhenBackendFails(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusInternalServerError, `{}`)
	})
	st := storeWith(t, "tok", "")
	c, rec := newTestClient(t, h, st)

	require.NoError(t, c.Logout(context.Background()))
	require.True(t, rec.Has("backend logout failed"))
	_, err := st.Load(context.Background())
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestClockIn_SendsEmptyObjectWithoutLocation(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(raw))
		writeBody(w, http.StatusOK, `{"success":true}`)
	})
	c, _ := newTestClient(t, h, storeWith(t, "tok", ""))

	require.NoError(t, c.ClockIn(context.Background(), nil))
}
