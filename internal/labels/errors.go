package labels

import (
	"errors"
	"net/http"
)

// Sentinel errors for label mapping and code generation.
var (
	ErrInvalidPayload = errors.New("invalid label payload")
	ErrNoRecords      = errors.New("at least one record is required")
	ErrInvalidSerial  = errors.New("serial must be positive")
)

// MapHTTPStatus maps label errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrNoRecords),
		errors.Is(err, ErrInvalidSerial):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
