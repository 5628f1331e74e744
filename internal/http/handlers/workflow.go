package handlers

import (
	"net/http"
)

// OpenOrder handles GET /orders/{orderID}: opens or refreshes the order session.
func (h *Handlers) OpenOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	view, err := h.workflow.OpenView(r.Context(), id)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, view)
}

// CloseOrder handles DELETE /orders/{orderID}/session.
func (h *Handlers) CloseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	h.workflow.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// AcceptOrder handles POST /orders/{orderID}/accept.
func (h *Handlers) AcceptOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	res, view, err := h.workflow.AcceptOrder(r.Context(), id)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, acceptResponse{
		AlreadyAssigned: res.AlreadyAssigned,
		Message:         res.Message,
		View:            view,
	})
}

// ToggleProduct handles PUT /orders/{orderID}/products/{productID}.
func (h *Handlers) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	productID := chiParam(r, "productID")
	if productID == "" {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	var req toggleRequest
	if ok := decodeJSON(h.Logger, w, r, &req); !ok {
		return
	}
	if req.Collected == nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, "collected is required")
		return
	}
	view, err := h.workflow.ToggleProduct(r.Context(), id, productID, *req.Collected)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, view)
}

// MarkOutForDelivery handles POST /orders/{orderID}/out-for-delivery.
func (h *Handlers) MarkOutForDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	view, err := h.workflow.MarkOutForDelivery(r.Context(), id)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, view)
}

// CompleteDelivery handles POST /orders/{orderID}/complete with the customer's code.
func (h *Handlers) CompleteDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromURL(r)
	if !ok {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	var req completeRequest
	if ok := decodeJSON(h.Logger, w, r, &req); !ok {
		return
	}
	view, err := h.workflow.CompleteDelivery(r.Context(), id, req.Code)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, view)
}
