package density

import (
	"errors"
	"net/http"
)

// Sentinel errors for density lookups and requests.
var (
	ErrUnavailable        = errors.New("density service unavailable")
	ErrInvalidDensity     = errors.New("density service returned an invalid value")
	ErrInvalidSolvent     = errors.New("solvent is required")
	ErrInvalidTemperature = errors.New("temperature must be a finite number")
)

// MapHTTPStatus maps density errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidSolvent) || errors.Is(err, ErrInvalidTemperature) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
