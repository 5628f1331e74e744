package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"driver-companion/internal/apperr"
	"driver-companion/internal/logx"
)

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("json encode failed",
			logx.RequestID(reqID(r.Context())),
			logx.Err(err),
		)
	}
}

type errResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	logger.Warn("http error",
		logx.RequestID(reqID(r.Context())),
		logx.Int("status", status),
		logx.String("msg", msg),
	)
	writeJSON(logger, w, r, status, errResponse{Error: msg})
}

// writeAppError maps an error category to a status and a message the driver can act on.
func writeAppError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	fields := []logx.Field{
		logx.RequestID(reqID(r.Context())),
		logx.Int("status", status),
		logx.Err(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}
	writeJSON(logger, w, r, status, errResponse{Error: msg, Kind: apperr.Kind(err)})
}

func statusOf(err error) (int, string) {
	msg := apperr.Message(err)
	pick := func(fallback string) string {
		if msg != "" {
			return msg
		}
		return fallback
	}
	switch {
	case errors.Is(err, apperr.ErrInvalidCode):
		return http.StatusUnprocessableEntity, pick("invalid verification code")
	case errors.Is(err, apperr.ErrNotAssigned):
		return http.StatusForbidden, "order is not assigned to you"
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, pick(err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized, "session expired, please log in again"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, pick("not found")
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, pick("order was taken by another driver")
	case errors.Is(err, apperr.ErrNetworkUnreachable):
		return http.StatusServiceUnavailable, "backend unreachable, check your connection"
	case errors.Is(err, apperr.ErrServer):
		return http.StatusBadGateway, pick("backend error")
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "backend timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

const (
	bodyLimit = 1 << 20
)

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	return true
}

func chiParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

func orderIDFromURL(r *http.Request) (string, bool) {
	id := chiParam(r, "orderID")
	return id, id != ""
}
