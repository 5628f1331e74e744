package handlers

import (
	"net/http"

	"driver-companion/internal/domain"
	"driver-companion/internal/service/orders"
)

// ListOrders handles GET /orders?scope=all|relevant|mine.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	scope, err := orders.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid scope")
		return
	}
	list, err := h.orders.List(r.Context(), scope)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	if list == nil {
		list = []domain.OrderView{}
	}
	writeJSON(h.Logger, w, r, http.StatusOK, listResponse{Scope: string(scope), Orders: list})
}

// CompletedOrders handles GET /orders/completed.
func (h *Handlers) CompletedOrders(w http.ResponseWriter, r *http.Request) {
	out, err := h.orders.Completed(r.Context())
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, out)
}

// Earnings handles GET /earnings.
func (h *Handlers) Earnings(w http.ResponseWriter, r *http.Request) {
	out, err := h.orders.Earnings(r.Context())
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, out)
}

// Payments handles GET /earnings/payments.
func (h *Handlers) Payments(w http.ResponseWriter, r *http.Request) {
	out, err := h.orders.Payments(r.Context())
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	if out == nil {
		out = []domain.Payment{}
	}
	writeJSON(h.Logger, w, r, http.StatusOK, out)
}

// Bill handles GET /orders/{orderID}/bill?format=pdf|json. A JSON bill is passed through as is.
func (h *Handlers) Bill(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	bill, err := h.orders.Bill(r.Context(), id, r.URL.Query().Get("format"))
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	if len(bill.Data) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(bill.Data)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, bill)
}

// PrintBill handles POST /orders/{orderID}/bill/print.
func (h *Handlers) PrintBill(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	var req domain.PrinterSettings
	if r.ContentLength != 0 {
		if ok := decodeJSON(h.Logger, w, r, &req); !ok {
			return
		}
	}
	if err := h.orders.PrintBill(r.Context(), id, req); err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ReportIssue handles POST /orders/{orderID}/issues.
func (h *Handlers) ReportIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	var req issueRequest
	if ok := decodeJSON(h.Logger, w, r, &req); !ok {
		return
	}
	if err := h.orders.ReportIssue(r.Context(), id, req.Description); err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
