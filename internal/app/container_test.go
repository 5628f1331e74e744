package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"driver-companion/internal/config"
	"driver-companion/internal/service/shift"
	"driver-companion/internal/service/workflow"
	"driver-companion/internal/session"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Port = 0
	cfg.Session.Store = config.SessionStoreMemory
	cfg.Log.Level = "error"
	return &cfg
}

func buildTestContainer(t *testing.T, ctx context.Context, cfg *config.Config) *dig.Container {
	t.Helper()

	c, err := NewContainerBuilder().
		WithConfig(func() (*config.Config, error) { return cfg, nil }).
		build(ctx)
	require.NoError(t, err)
	return c
}

func TestBuild_ProvidesServer(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Port = 8080
	c := buildTestContainer(t, context.Background(), cfg)

	err := c.Invoke(func(srv *http.Server, store session.Store) {
		require.Equal(t, ":8080", srv.Addr)
		require.Greater(t, srv.ReadHeaderTimeout, time.Duration(0))
		require.Greater(t, srv.ReadTimeout, time.Duration(0))
		require.Greater(t, srv.WriteTimeout, time.Duration(0))
		require.Greater(t, srv.IdleTimeout, time.Duration(0))
		require.IsType(t, &session.MemoryStore{}, store)
	})
	require.NoError(t, err)
}

func TestBuild_RoutesServeThroughMiddleware(t *testing.T) {
	t.Parallel()

	c := buildTestContainer(t, context.Background(), testConfig())

	err := c.Invoke(func(mux http.Handler) {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		require.JSONEq(t, `{"authenticated":false}`, rr.Body.String())

		rr = httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		require.Contains(t, rr.Body.String(), "gateway_retries_total")
		require.Contains(t, rr.Body.String(), "rate_limit_exceeded_total")
	})
	require.NoError(t, err)
}

func TestBuild_LocationDisabledLeavesNoTracker(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Location.Enabled = false
	c := buildTestContainer(t, context.Background(), cfg)

	require.NoError(t, c.Invoke(func(tr shift.Tracker, reg *workflow.Registry) {
		require.Nil(t, tr)
		require.Zero(t, reg.Len())
	}))
}

func TestBuild_KafkaDisabledPublishesNothing(t *testing.T) {
	t.Parallel()

	c := buildTestContainer(t, context.Background(), testConfig())

	type in struct {
		dig.In
		Publisher workflow.Publisher `optional:"true"`
		Closers   []resourceCloser   `group:"closers"`
	}
	require.NoError(t, c.Invoke(func(p in) {
		require.Nil(t, p.Publisher)
		for _, cl := range p.Closers {
			require.Nil(t, cl)
		}
	}))
}

func TestMustBuild_ConfigErrorIsFatal(t *testing.T) {
	t.Parallel()

	var fatal string
	b := NewContainerBuilder().
		WithConfig(func() (*config.Config, error) { return nil, errors.New("bad env") }).
		WithLogFatalf(func(format string, _ ...interface{}) { fatal = format })

	c := b.MustBuild(context.Background())
	require.Nil(t, c)
	require.Equal(t, "failed to build container: %v", fatal)
}
