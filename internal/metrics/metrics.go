package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retried backend reads
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by the backend gateway",
	})
}

// NewWorkflowCommandsTotal returns a counter of order workflow commands by command and outcome
func NewWorkflowCommandsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_commands_total",
		Help: "Total number of order workflow commands by command and outcome",
	}, []string{"command", "outcome"})
}

// NewToggleRevertsTotal returns a counter of checklist toggles rolled back after a failed request
func NewToggleRevertsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checklist_toggle_reverts_total",
		Help: "Total number of optimistic checklist toggles rolled back",
	})
}

// NewLocationUpdatesTotal returns a counter of location reports by result
func NewLocationUpdatesTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "location_updates_total",
		Help: "Total number of location samples by result",
	}, []string{"result"})
}

// NewJournalEventsTotal returns a counter of workflow events consumed by the journal worker by result
func NewJournalEventsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_events_total",
		Help: "Total number of workflow events handled by the journal worker by result",
	}, []string{"result"})
}
