package docstore

import (
	"errors"
	"net/http"
)

// Domain errors for document store operations.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrInvalidFields     = errors.New("record fields cannot be encoded")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidCollection) || errors.Is(err, ErrInvalidFields) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
