package handlers

import (
	"net/http"

	"driver-companion/internal/logx"
)

// Handlers holds the HTTP handlers of the companion API.
type Handlers struct {
	Logger   logx.Logger
	auth     AuthUsecase
	shift    ShiftUsecase
	location LocationSink
	orders   OrdersUsecase
	workflow WorkflowUsecase
}

// Usecases are the services the handlers delegate to.
type Usecases struct {
	Auth     AuthUsecase
	Shift    ShiftUsecase
	Location LocationSink
	Orders   OrdersUsecase
	Workflow WorkflowUsecase
}

// New creates a Handlers instance. A nil logger discards output.
func New(logger logx.Logger, uc Usecases) *Handlers {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Handlers{
		Logger:   logger,
		auth:     uc.Auth,
		shift:    uc.Shift,
		location: uc.Location,
		orders:   uc.Orders,
		workflow: uc.Workflow,
	}
}

// Ping handles GET /ping and returns 200 with {"message":"pong"}.
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.Logger, w, r, http.StatusOK, map[string]string{"message": "pong"})
}

// HealthcheckHead handles HEAD /healthcheck and returns 204 No Content.
func (h *Handlers) HealthcheckHead(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// NotFound returns a JSON 404 error for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(h.Logger, w, r, http.StatusNotFound, "route not found")
}
