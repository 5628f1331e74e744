package domain

// ActionHandler identifies what triggering the primary action does.
type ActionHandler string

const (
	HandlerNone                   ActionHandler = "none"
	HandlerAcceptOrder            ActionHandler = "acceptOrder"
	HandlerMarkOutForDelivery     ActionHandler = "markOutForDelivery"
	HandlerOpenChecklist          ActionHandler = "openChecklist"
	HandlerOpenVerificationPrompt ActionHandler = "openVerificationPrompt"
)

// Tone is the visual emphasis of an action.
type Tone string

const (
	TonePending Tone = "pending"
	ToneSuccess Tone = "success"
	TonePrimary Tone = "primary"
	ToneWarning Tone = "warning"
	ToneMuted   Tone = "muted"
)

// Color returns the hex colour associated with the tone.
func (t Tone) Color() string {
	switch t {
	case TonePending:
		return "#fbbf24"
	case ToneSuccess:
		return "#10b981"
	case TonePrimary:
		return "#3b82f6"
	case ToneWarning:
		return "#f59e0b"
	default:
		return "#6b7280"
	}
}

// NextAction is the single primary action offered for an order.
type NextAction struct {
	Label   string        `json:"label"`
	Tone    Tone          `json:"tone"`
	Color   string        `json:"color"`
	Enabled bool          `json:"enabled"`
	Handler ActionHandler `json:"handler"`
}

// Flags are the in-flight mutation markers of an order session.
type Flags struct {
	Accepting bool
	Busy      bool
}

// OrderView is everything a screen needs to render an order.
type OrderView struct {
	Order     Order      `json:"order"`
	Checklist Checklist  `json:"checklist"`
	Progress  Progress   `json:"progress"`
	Action    NextAction `json:"next_action"`
}
