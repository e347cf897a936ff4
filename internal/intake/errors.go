package intake

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/logomagic/internal/upload"
	"github.com/JaimeStill/logomagic/internal/wizard"
)

var (
	ErrMissingFile   = errors.New("file field required")
	ErrMalformedForm = errors.New("malformed form data")
)

// MapHTTPStatus converts intake, upload, and orchestrator errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrMissingFile) || errors.Is(err, ErrMalformedForm) {
		return http.StatusBadRequest
	}
	if status := upload.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return wizard.MapHTTPStatus(err)
}
