package journal

import (
	"strings"

	"driver-companion/internal/domain"
)

// foldFunc applies one event to the folded state of its order.
type foldFunc func(st *domain.OrderState, e domain.WorkflowEvent)

type foldFactory struct {
	byType map[string]foldFunc
}

func newFoldFactory() *foldFactory {
	return &foldFactory{
		byType: map[string]foldFunc{
			domain.EventOrderViewed:       foldStatus,
			domain.EventOrderAccepted:     foldAccepted,
			domain.EventProductToggled:    foldStatus,
			domain.EventToggleReverted:    foldReverted,
			domain.EventOutForDelivery:    foldStatus,
			domain.EventDeliveryCompleted: foldStatus,
		},
	}
}

func (f *foldFactory) get(eventType string) (foldFunc, bool) {
	eventType = strings.ToLower(strings.TrimSpace(eventType))
	fn, ok := f.byType[eventType]
	return fn, ok
}

func foldStatus(st *domain.OrderState, e domain.WorkflowEvent) {
	if e.Outcome == domain.OutcomeFailure {
		st.Failures++
	}
	if e.Status != "" {
		st.Status = e.Status
	}
}

func foldAccepted(st *domain.OrderState, e domain.WorkflowEvent) {
	foldStatus(st, e)
	if e.Outcome == domain.OutcomeSuccess && e.DriverID != "" {
		st.DriverID = e.DriverID
	}
}

func foldReverted(st *domain.OrderState, _ domain.WorkflowEvent) {
	st.Failures++
}
