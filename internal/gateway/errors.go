package gateway

import (
	"errors"
	"net/http"
)

// FallbackMessage is used when a failed response carries no message.
const FallbackMessage = "Request failed"

// Error kinds a RequestFailed can be classified as with errors.Is.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
)

// RequestFailed is the single error shape returned for any unsuccessful call.
// Status is the HTTP status, or 0 when no response was received.
type RequestFailed struct {
	Status    int
	Message   string
	RequestID string
	Err       error
}

func (e *RequestFailed) Error() string {
	if e.Message == "" {
		return FallbackMessage
	}
	return e.Message
}

func (e *RequestFailed) Unwrap() error {
	return e.Err
}

// Is classifies the failure by status code.
func (e *RequestFailed) Is(target error) bool {
	switch target {
	case ErrValidationFailed:
		return e.Status == http.StatusBadRequest
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

// Message returns the human readable message carried by err, or err.Error()
// when err is not a RequestFailed.
func Message(err error) string {
	var rf *RequestFailed
	if errors.As(err, &rf) {
		return rf.Error()
	}
	return err.Error()
}
