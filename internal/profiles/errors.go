package profiles

import (
	"errors"
	"net/http"
)

// Sentinel errors for profile lookup and selection.
var (
	ErrNotFound       = errors.New("profile not found")
	ErrInvalidPayload = errors.New("invalid profile selection payload")
)

// MapHTTPStatus maps profile errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
