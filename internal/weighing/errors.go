package weighing

import (
	"errors"
	"net/http"
)

// Sentinel errors for weighing calculations and sessions.
var (
	ErrNotFound       = errors.New("weighing session not found")
	ErrUnknownUnit    = errors.New("unknown unit")
	ErrInvalidPayload = errors.New("invalid weighing payload")
)

// MapHTTPStatus maps weighing errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownUnit), errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
