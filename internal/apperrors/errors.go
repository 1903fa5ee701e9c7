package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidParty indicates that the requested party is absent or unknown.
var ErrInvalidParty = errors.New("invalid party")

// ErrAnchorUnavailable indicates the party's current balance could not be computed,
// so a statement session cannot be opened.
var ErrAnchorUnavailable = errors.New("anchor balance unavailable")

// ErrSourceFetch indicates one of the per-kind source queries failed.
// The whole page fails atomically; cursor and balance stay at their pre-page values.
var ErrSourceFetch = errors.New("source fetch failed")

// ErrStaleSession indicates a cancelled fetch completed after the session moved on.
// Its result is discarded, never surfaced as a user error.
var ErrStaleSession = errors.New("stale session result discarded")

// ErrLoadInFlight indicates a page load was requested while another was outstanding.
var ErrLoadInFlight = errors.New("a page load is already in flight")

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates a 404 AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
