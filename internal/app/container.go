package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"driver-companion/internal/config"
	"driver-companion/internal/domain"
	"driver-companion/internal/gateway/backend"
	"driver-companion/internal/http/handlers"
	"driver-companion/internal/http/middleware/ratelimit"
	"driver-companion/internal/http/router"
	"driver-companion/internal/location"
	"driver-companion/internal/logx"
	"driver-companion/internal/service/auth"
	"driver-companion/internal/service/orders"
	"driver-companion/internal/service/shift"
	"driver-companion/internal/service/workflow"
	"driver-companion/internal/session"
	"driver-companion/internal/transport/kafka"
	engine "driver-companion/internal/workflow"
)

const serviceTimeout = 30 * time.Second

// ContainerBuilder is a dig container builder for the companion service.
type ContainerBuilder struct {
	loadConfig func() (*config.Config, error)
	logFatalf  func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		loadConfig: config.Load,
		logFatalf:  log.Fatalf,
	}
}

// WithConfig replaces configuration loading, e.g. with a fixed config.
func (b *ContainerBuilder) WithConfig(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadConfig = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadConfig); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerBackend(container); err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context, loadConfig func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		loadConfig,
		NewLogger,
		newRegistry,
		newCompanionMetrics,
		openSessionStore,
	)
}

// workflowBackend serves order reads through the retrying gateway and commands
// through the plain client.
type workflowBackend struct {
	*backend.Client
	reads *backend.RetryingGateway
}

func (b workflowBackend) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	return b.reads.GetOrder(ctx, orderID)
}

// shiftBackend reads the profile through the retrying gateway.
type shiftBackend struct {
	*backend.Client
	reads *backend.RetryingGateway
}

func (b shiftBackend) GetProfile(ctx context.Context) (domain.Driver, error) {
	return b.reads.GetProfile(ctx)
}

func registerBackend(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, store session.Store, logger logx.Logger) *backend.Client {
			return backend.New(backend.Config{
				BaseURL: cfg.Backend.BaseURL,
				Timeout: cfg.Backend.Timeout,
			}, store, logger.With(logx.String("component", "backend")))
		},
		func(cfg *config.Config, c *backend.Client, logger logx.Logger, m *companionMetrics) *backend.RetryingGateway {
			return backend.NewRetryingGateway(c, logger, m.GatewayRetries, backend.RetryConfig{
				MaxAttempts: cfg.Backend.Retry.MaxAttempts,
				BaseDelay:   cfg.Backend.Retry.BaseDelay,
				MaxDelay:    cfg.Backend.Retry.MaxDelay,
			})
		},
	)
}

type publisherOut struct {
	dig.Out

	Publisher workflow.Publisher
	Closer    resourceCloser `group:"closers"`
}

func newPublisher(cfg *config.Config, logger logx.Logger) (publisherOut, error) {
	if !cfg.Kafka.Enabled() {
		logger.Info("workflow events not published: kafka not configured")
		return publisherOut{}, nil
	}
	p, err := kafka.NewProducer(logger, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return publisherOut{}, fmt.Errorf("kafka producer: %w", err)
	}
	return publisherOut{Publisher: p, Closer: p.Close}, nil
}

func newTracker(
	cfg *config.Config,
	src *location.PushSource,
	c *backend.Client,
	store session.Store,
	logger logx.Logger,
	m *companionMetrics,
) shift.Tracker {
	if !cfg.Location.Enabled {
		return nil
	}
	return location.NewTracker(src, c, store, location.Config{
		Interval:        cfg.Location.Interval,
		MinSendInterval: cfg.Location.MinSendInterval,
	}, logger.With(logx.String("component", "location")), m.LocationUpdates)
}

type workflowIn struct {
	dig.In

	Config    *config.Config
	Client    *backend.Client
	Reads     *backend.RetryingGateway
	Publisher workflow.Publisher `optional:"true"`
	Auth      *auth.Service
	Logger    logx.Logger
	Metrics   *companionMetrics
}

func newWorkflowRegistry(in workflowIn) *workflow.Registry {
	return workflow.NewRegistry(workflow.Deps{
		Backend: workflowBackend{Client: in.Client, reads: in.Reads},
		Engine: engine.New(
			engine.WithImageBaseURL(in.Config.Backend.ImageBaseURL),
		),
		Publisher: in.Publisher,
		Logger:    in.Logger.With(logx.String("component", "workflow")),
		Commands:  in.Metrics.WorkflowCommands,
		Reverts:   in.Metrics.ToggleReverts,
		DriverID:  in.Auth.DriverID,
		IdleTTL:   in.Config.Session.OrderIdleTTL,
	})
}

func registerDomainServices(container *dig.Container) error {
	if err := provideAll(container,
		location.NewPushSource,
		newTracker,
		newPublisher,
		func(c *backend.Client, store session.Store, logger logx.Logger) *auth.Service {
			return auth.NewService(c, store, logger)
		},
		newWorkflowRegistry,
		func(c *backend.Client, reads *backend.RetryingGateway, tracker shift.Tracker, logger logx.Logger) *shift.Service {
			return shift.NewService(shiftBackend{Client: c, reads: reads}, tracker, serviceTimeout, logger)
		},
		func(cfg *config.Config, c *backend.Client, reads *backend.RetryingGateway, logger logx.Logger) *orders.Service {
			e := engine.New(engine.WithImageBaseURL(cfg.Backend.ImageBaseURL))
			return orders.NewService(reads, c, e, serviceTimeout, logger)
		},
	); err != nil {
		return err
	}
	return container.Invoke(wireSessionHooks)
}

// wireSessionHooks tears down order sessions and tracking whenever the driver session ends.
func wireSessionHooks(c *backend.Client, a *auth.Service, reg *workflow.Registry, tracker shift.Tracker) {
	a.OnLogout(reg.CloseAll)
	if tracker != nil {
		a.OnLogout(tracker.Stop)
	}
	c.OnUnauthorized(a.SessionEnded)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      45 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	handlersProvider := func(
		logger logx.Logger,
		a *auth.Service,
		s *shift.Service,
		src *location.PushSource,
		o *orders.Service,
		reg *workflow.Registry,
	) *handlers.Handlers {
		return handlers.New(logger, handlers.Usecases{
			Auth:     a,
			Shift:    s,
			Location: src,
			Orders:   o,
			Workflow: reg,
		})
	}
	routerProvider := func(
		h *handlers.Handlers,
		logger logx.Logger,
		reg *prometheus.Registry,
		m *companionMetrics,
		rl *ratelimit.Middleware,
	) http.Handler {
		return router.New(h, router.Options{
			Logger:      logger,
			Metrics:     m.HTTP,
			Gatherer:    reg,
			Submissions: rl.Handler(),
		})
	}
	return provideAll(container,
		handlersProvider,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		routerProvider,
		serverProvider,
	)
}
