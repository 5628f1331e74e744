package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetworkUnreachable is returned when the backend could not be reached at all.
var ErrNetworkUnreachable = errors.New("network unreachable")

// ErrUnauthorized indicates that the driver session is no longer valid.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound indicates that the order or product does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a state conflict, e.g. the order is already taken by another driver.
var ErrConflict = errors.New("conflict")

// ErrServer indicates a backend failure (HTTP 5xx).
var ErrServer = errors.New("server error")

// ErrValidation is returned when the input or the local order state does not permit the operation.
var ErrValidation = errors.New("validation failed")

// ErrUnknown covers every failure that fits no other category.
var ErrUnknown = errors.New("unknown error")

// ErrInvalidCode is returned when the backend rejects a delivery verification code.
var ErrInvalidCode = fmt.Errorf("invalid verification code: %w", ErrValidation)

// ErrNotAssigned is returned when a checklist mutation is attempted on an order not assigned to the driver.
var ErrNotAssigned = fmt.Errorf("order is not assigned to this driver: %w", ErrValidation)

// RemoteError carries the details of a failed backend call.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Kind    error
}

func (e *RemoteError) Error() string {
	kind := ErrUnknown
	if e.Kind != nil {
		kind = e.Kind
	}
	switch {
	case e.Message != "" && e.Status > 0:
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, kind, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, kind, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Op, kind, e.Status)
	default:
		return fmt.Sprintf("%s: %s", e.Op, kind)
	}
}

func (e *RemoteError) Unwrap() error {
	if e.Kind == nil {
		return ErrUnknown
	}
	return e.Kind
}

// FromStatus maps an HTTP status code to an error category. 2xx maps to nil.
func FromStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status >= 500:
		return ErrServer
	default:
		return ErrUnknown
	}
}

// Message returns the server-provided message of a RemoteError, if any.
func Message(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}

// Status returns the HTTP status of a RemoteError, or 0.
func Status(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// Kind returns a stable category name for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNetworkUnreachable):
		return "network_unreachable"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrServer):
		return "server_error"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	default:
		return "unknown"
	}
}
