package exports

import (
	"errors"
	"net/http"
)

// Sentinel errors for export generation and the export archive.
var (
	ErrEmptyRows       = errors.New("nothing to export: the list is empty")
	ErrExportFailed    = errors.New("export failed")
	ErrUnknownFormat   = errors.New("unknown export format")
	ErrInvalidPayload  = errors.New("invalid export payload")
	ErrNotFound        = errors.New("export not found")
	ErrDuplicate       = errors.New("export already exists")
	ErrArchiveDisabled = errors.New("export archive is not enabled")
)

// MapHTTPStatus maps export errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyRows),
		errors.Is(err, ErrUnknownFormat),
		errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
