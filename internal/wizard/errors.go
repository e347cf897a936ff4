package wizard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/logomagic/internal/upload"
)

// User-facing messages for failed pipelines. The underlying cause is logged, never shown.
const (
	MsgUploadFailed  = "Error uploading images. Please try again."
	MsgPaymentFailed = "Error processing payment details. Please try again."
)

// Validation messages.
const (
	MsgLogoRequired      = "Please upload your logo."
	MsgTargetRequired    = "Please upload your target image."
	MsgPlacementRequired = "Please describe where the logo should go."
	MsgContactRequired   = "Please fill in a valid email address, name, and logo placement description."
	MsgPaymentRequired   = "Please provide both the PayPal transaction ID and the receipt."
	MsgInvalidEmail      = "Please enter a valid email address."
)

var (
	// ErrInvalidTransition is returned when an action is not available from the open dialog.
	ErrInvalidTransition = errors.New("action not available in the current dialog")

	// ErrBusy is returned while a submission or payment pipeline is in flight.
	ErrBusy = errors.New("a submission is already in progress")
)

// ValidationError reports a missing or invalid field, detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PersistError reports a failed document store write.
type PersistError struct {
	Collection string
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save %s record: %v", e.Collection, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// MapHTTPStatus converts orchestrator errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		persistErr    *PersistError
		uploadErr     *upload.UploadError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.As(err, &uploadErr), errors.As(err, &persistErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
