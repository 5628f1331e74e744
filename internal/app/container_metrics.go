package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	obs "driver-companion/internal/http/middleware"
	"driver-companion/internal/metrics"
)

type companionMetrics struct {
	HTTP             *obs.HTTPMetrics
	GatewayRetries   prometheus.Counter
	WorkflowCommands *prometheus.CounterVec
	ToggleReverts    prometheus.Counter
	LocationUpdates  *prometheus.CounterVec
}

type metricsOut struct {
	dig.Out

	Metrics           *companionMetrics
	RateLimitExceeded prometheus.Counter `name:"rate_limit_exceeded_total"`
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newCompanionMetrics(reg *prometheus.Registry) (metricsOut, error) {
	m := &companionMetrics{
		HTTP:             obs.NewHTTPMetrics(),
		GatewayRetries:   metrics.NewGatewayRetriesTotal(),
		WorkflowCommands: metrics.NewWorkflowCommandsTotal(),
		ToggleReverts:    metrics.NewToggleRevertsTotal(),
		LocationUpdates:  metrics.NewLocationUpdatesTotal(),
	}
	limited := metrics.NewRateLimitExceededTotal()

	cs := append(m.HTTP.Collectors(), m.GatewayRetries, m.WorkflowCommands, m.ToggleReverts, m.LocationUpdates, limited)
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return metricsOut{}, err
		}
	}
	return metricsOut{Metrics: m, RateLimitExceeded: limited}, nil
}
