package handlers

import (
	"net/http"

	"driver-companion/internal/domain"
)

// Profile handles GET /driver/profile.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	d, err := h.shift.Profile(r.Context())
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, d)
}

// UpdateProfile handles PUT /driver/profile.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.ProfileUpdate
	if ok := decodeJSON(h.Logger, w, r, &req); !ok {
		return
	}
	d, err := h.shift.UpdateProfile(r.Context(), req)
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, d)
}

// ClockIn handles POST /driver/clock-in. The body is optional.
func (h *Handlers) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req clockInRequest
	if r.ContentLength != 0 {
		if ok := decodeJSON(h.Logger, w, r, &req); !ok {
			return
		}
	}
	if req.Location != nil && h.location != nil {
		h.location.Push(*req.Location)
	}
	h.noContent(w, r, h.shift.ClockIn(r.Context(), req.Location))
}

// ClockOut handles POST /driver/clock-out.
func (h *Handlers) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.shift.ClockOut(r.Context()))
}

// StartBreak handles POST /driver/break/start.
func (h *Handlers) StartBreak(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.shift.StartBreak(r.Context()))
}

// EndBreak handles POST /driver/break/end.
func (h *Handlers) EndBreak(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.shift.EndBreak(r.Context()))
}

// PushLocation handles POST /driver/location. The fix is picked up by the tracker's next tick.
func (h *Handlers) PushLocation(w http.ResponseWriter, r *http.Request) {
	var req domain.Location
	if ok := decodeJSON(h.Logger, w, r, &req); !ok {
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		writeError(h.Logger, w, r, http.StatusBadRequest, "coordinates out of range")
		return
	}
	if h.location != nil {
		h.location.Push(req)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) noContent(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
