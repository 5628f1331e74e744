package handlers

import (
	"net/http"

	"driver-companion/internal/domain"
)

// Login handles POST /auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if ok := decodeJSON(h.Logger, w, r, &req); !ok {
		return
	}
	d, err := h.auth.Login(r.Context(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, d)
}

// Logout handles POST /auth/logout. The local session ends even when the backend call fails.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Status handles GET /auth/status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.auth.Status(r.Context())
	if err != nil {
		writeAppError(h.Logger, w, r, err)
		return
	}
	writeJSON(h.Logger, w, r, http.StatusOK, statusResponse{Authenticated: st.Authenticated, Driver: st.Driver})
}

// RequireSession rejects requests without a live driver session.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := h.auth.Status(r.Context())
		if err != nil {
			writeAppError(h.Logger, w, r, err)
			return
		}
		if !st.Authenticated {
			writeError(h.Logger, w, r, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
