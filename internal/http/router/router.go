package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"

	"driver-companion/internal/http/handlers"
	obs "driver-companion/internal/http/middleware"
	"driver-companion/internal/logx"
)

const defaultRequestTimeout = 30 * time.Second

// Options configure the middleware chain. Zero values disable the optional parts.
type Options struct {
	Logger  logx.Logger
	Metrics *obs.HTTPMetrics
	// Gatherer backs GET /metrics when set.
	Gatherer prometheus.Gatherer
	// Submissions wraps the workflow and duty mutations.
	Submissions    func(http.Handler) http.Handler
	RequestTimeout time.Duration
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(h *handlers.Handlers, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logx.Nop()
	}
	submissions := opts.Submissions
	if submissions == nil {
		submissions = func(next http.Handler) http.Handler { return next }
	}

	sec := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "no-referrer",
	})

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.Observability(opts.Logger, opts.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(sec.Handler)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/status", h.Status)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Route("/driver", func(r chi.Router) {
			r.Get("/profile", h.Profile)
			r.Put("/profile", h.UpdateProfile)
			r.Post("/location", h.PushLocation)
			r.Group(func(r chi.Router) {
				r.Use(submissions)
				r.Post("/clock-in", h.ClockIn)
				r.Post("/clock-out", h.ClockOut)
				r.Post("/break/start", h.StartBreak)
				r.Post("/break/end", h.EndBreak)
			})
		})

		r.Get("/earnings", h.Earnings)
		r.Get("/earnings/payments", h.Payments)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Get("/completed", h.CompletedOrders)
			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", h.OpenOrder)
				r.Delete("/session", h.CloseOrder)
				r.Get("/bill", h.Bill)
				r.Group(func(r chi.Router) {
					r.Use(submissions)
					r.Post("/accept", h.AcceptOrder)
					r.Put("/products/{productID}", h.ToggleProduct)
					r.Post("/out-for-delivery", h.MarkOutForDelivery)
					r.Post("/complete", h.CompleteDelivery)
					r.Post("/bill/print", h.PrintBill)
					r.Post("/issues", h.ReportIssue)
				})
			})
		})
	})

	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
