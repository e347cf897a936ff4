package upload

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid file")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidCategory = errors.New("invalid upload category")
)

// UploadError reports a failed object store write.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// MapHTTPStatus converts upload errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrUnsupportedType) {
		return http.StatusUnsupportedMediaType
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrInvalidCategory) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
