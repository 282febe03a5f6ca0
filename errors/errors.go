package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrValidation        = fmt.Errorf("validation failed")
	ErrInvalidIdentifier = fmt.Errorf("invalid identifier")

	ErrSessionNotReady = fmt.Errorf("WhatsApp client is not ready yet. Please wait for initialization to complete.")
	// ErrSessionNeverInitialized is a not ready session whose engine was never started.
	ErrSessionNeverInitialized = fmt.Errorf("%w", ErrSessionNotReady)

	ErrRecipientNotRegistered  = fmt.Errorf("The number is not registered")
	ErrRegistrationCheckFailed = fmt.Errorf("registration check failed")

	ErrPayloadTooLarge = fmt.Errorf("payload too large")
	ErrEmptyUpload     = fmt.Errorf("File data is empty or not properly uploaded")
	ErrNoFileUploaded  = fmt.Errorf("No file uploaded. Please upload a file.")
	ErrEncodingFailed  = fmt.Errorf("Failed to convert file to base64")

	ErrSendTimeout      = fmt.Errorf("Media sending timeout. Large files may take longer to process.")
	ErrEvaluationFailed = fmt.Errorf("WhatsApp Web failed to process the media file. This may happen with very large files or unsupported formats.")
	ErrProtocolError    = fmt.Errorf("Connection error with WhatsApp Web. Please try again.")
	ErrConnectionLost   = fmt.Errorf("WhatsApp Web connection lost. Please check your connection and try again.")
	ErrSendFailed       = fmt.Errorf("Error sending message")
	ErrMediaSendFailed  = fmt.Errorf("Error sending media")
	ErrClearFailed      = fmt.Errorf("Error clearing messages")

	ErrGroupNotFound       = fmt.Errorf("group not found")
	ErrGroupLookupFailed   = fmt.Errorf("Failed to look up the group")
	ErrGroupMutationFailed = fmt.Errorf("Failed to add the number to the group")

	ErrObserverSlow = fmt.Errorf("observer queue full")
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrWeakAPIKey   = fmt.Errorf("%w: api key must be 24 to 128 characters mixing letters and digits", ErrValidation)
)

const mebibyte = 1024 * 1024

// PayloadTooLargeError reports which ceiling an upload crossed.
type PayloadTooLargeError struct {
	Category string
	Limit    int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("File size too large. Maximum size for %s files is %dMB.",
		e.Category, e.Limit/mebibyte)
}

func (e *PayloadTooLargeError) Unwrap() error { return ErrPayloadTooLarge }

type GroupNotFoundError struct {
	Name string
}

func (e *GroupNotFoundError) Error() string {
	return "No group found with name: " + e.Name
}

func (e *GroupNotFoundError) Unwrap() error { return ErrGroupNotFound }

// GroupIDNotFoundError is a group id the session cannot see.
type GroupIDNotFoundError struct {
	ID string
}

func (e *GroupIDNotFoundError) Error() string {
	return "No group found with id: " + e.ID
}

func (e *GroupIDNotFoundError) Unwrap() error { return ErrGroupNotFound }

// RegistrationCheckError keeps the engine failure next to the sentinel so
// callers can match either one.
type RegistrationCheckError struct {
	Cause error
}

func (e *RegistrationCheckError) Error() string {
	return fmt.Sprintf("Error checking number registration: %v", e.Cause)
}

func (e *RegistrationCheckError) Unwrap() []error {
	return []error{ErrRegistrationCheckFailed, e.Cause}
}

// SendError keeps the caller facing message of Kind while still exposing the
// engine failure to errors.Is and errors.As.
type SendError struct {
	Kind  error
	Cause error
}

func (e *SendError) Error() string { return e.Kind.Error() }

func (e *SendError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

// HTTPStatus maps a dispatch failure onto the status code callers use to
// decide between fixing their input (422), waiting (503) and retrying (500).
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrSessionNotReady):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, ErrRegistrationCheckFailed):
		return http.StatusInternalServerError
	case stderrors.Is(err, ErrValidation),
		stderrors.Is(err, ErrInvalidIdentifier),
		stderrors.Is(err, ErrRecipientNotRegistered),
		stderrors.Is(err, ErrPayloadTooLarge),
		stderrors.Is(err, ErrEmptyUpload),
		stderrors.Is(err, ErrNoFileUploaded),
		stderrors.Is(err, ErrEncodingFailed),
		stderrors.Is(err, ErrGroupNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// IsTransient tells whether retrying the same request may succeed.
func IsTransient(err error) bool {
	return stderrors.Is(err, ErrRegistrationCheckFailed) ||
		stderrors.Is(err, ErrSendTimeout) ||
		stderrors.Is(err, ErrEvaluationFailed) ||
		stderrors.Is(err, ErrProtocolError) ||
		stderrors.Is(err, ErrConnectionLost) ||
		stderrors.Is(err, ErrSessionNotReady)
}
