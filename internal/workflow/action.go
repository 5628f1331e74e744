package workflow

import (
	"fmt"

	"driver-companion/internal/domain"
)

type resolveFunc func(domain.Progress) domain.NextAction

// actionTable maps a status to the action offered once acceptance is out of the way.
type actionTable struct {
	byStatus map[domain.OrderStatus]resolveFunc
}

func newActionTable() *actionTable {
	return &actionTable{
		byStatus: map[domain.OrderStatus]resolveFunc{
			domain.StatusProcessing:     processingAction,
			domain.StatusOutForDelivery: func(domain.Progress) domain.NextAction { return completeDeliveryAction },
			domain.StatusDelivered:      func(domain.Progress) domain.NextAction { return orderCompletedAction },
		},
	}
}

func (t *actionTable) get(status domain.OrderStatus) (resolveFunc, bool) {
	fn, ok := t.byStatus[status]
	return fn, ok
}

func action(label string, tone domain.Tone, enabled bool, h domain.ActionHandler) domain.NextAction {
	return domain.NextAction{Label: label, Tone: tone, Color: tone.Color(), Enabled: enabled, Handler: h}
}

var (
	acceptingAction        = action("Accepting Order…", domain.TonePending, false, domain.HandlerNone)
	acceptAction           = action("Accept Order", domain.ToneSuccess, true, domain.HandlerAcceptOrder)
	readyForDeliveryAction = action("Mark as Ready for Delivery", domain.TonePrimary, true, domain.HandlerMarkOutForDelivery)
	outForDeliveryAction   = action("Mark as Out for Delivery", domain.TonePrimary, true, domain.HandlerMarkOutForDelivery)
	completeDeliveryAction = action("Complete Delivery", domain.ToneSuccess, true, domain.HandlerOpenVerificationPrompt)
	orderCompletedAction   = action("Order Completed", domain.ToneMuted, false, domain.HandlerNone)
	inProgressAction       = action("Processing…", domain.ToneMuted, false, domain.HandlerNone)
)

func processingAction(p domain.Progress) domain.NextAction {
	switch {
	case p.Total == 0:
		return readyForDeliveryAction
	case p.Collected == p.Total:
		return outForDeliveryAction
	default:
		return action(fmt.Sprintf("Collect Items (%d/%d)", p.Collected, p.Total),
			domain.ToneWarning, true, domain.HandlerOpenChecklist)
	}
}

// NextAction resolves the single primary action for an order. The first matching rule wins:
// an accept in flight, then acceptance of a received order, then the per-status action.
// A busy session keeps the action but disables it.
func (e *Engine) NextAction(order domain.Order, progress domain.Progress, flags domain.Flags) domain.NextAction {
	if flags.Accepting {
		return acceptingAction
	}

	var a domain.NextAction
	if !order.Assignment.AssignedToMe && order.Status == domain.StatusReceived {
		a = acceptAction
	} else if fn, ok := e.actions.get(order.Status); ok {
		a = fn(progress)
	} else {
		a = inProgressAction
	}

	if flags.Busy {
		a.Enabled = false
	}
	return a
}
