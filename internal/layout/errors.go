package layout

import (
	"errors"
	"net/http"
)

// Sentinel errors for symbol encoding and label layout.
var (
	ErrEmptyValue        = errors.New("nothing to encode")
	ErrSymbolSize        = errors.New("symbol does not fit")
	ErrUnsupportedFormat = errors.New("unsupported symbol format")
	ErrInvalidPayload    = errors.New("invalid layout payload")
	ErrNoPreview         = errors.New("no label is being previewed")
)

// MapHTTPStatus maps layout errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoPreview):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
