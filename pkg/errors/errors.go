package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different kinds of failure a client call can produce
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeLogin          ErrorType = "login"
	ErrorTypeSessionExpired ErrorType = "session_expired"
	ErrorTypeAPI            ErrorType = "api"
	ErrorTypeTransport      ErrorType = "transport"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeCheckpoint     ErrorType = "checkpoint"
	ErrorTypeParsing        ErrorType = "parsing"
)

// Error is the single error type returned by the client packages.
//
// Code is the HTTP status (0 when no response was received), VendorType is the
// `error_type` field of the response envelope when present, and Body holds the
// raw response body so callers can inspect payloads the client does not model.
type Error struct {
	Type       ErrorType
	Message    string
	Code       int
	VendorType string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.VendorType != "" {
		return fmt.Sprintf("%s error (code %d, %s): %s", e.Type, e.Code, e.VendorType, msg)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against the kind sentinels below, so
// errors.Is(err, ErrSessionExpired) works through any amount of wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" || t.Code != 0 {
		return e == t
	}
	return t.Type == e.Type
}

// Kind sentinels for use with errors.Is.
var (
	ErrValidation     = &Error{Type: ErrorTypeValidation}
	ErrLogin          = &Error{Type: ErrorTypeLogin}
	ErrSessionExpired = &Error{Type: ErrorTypeSessionExpired}
	ErrAPI            = &Error{Type: ErrorTypeAPI}
	ErrTransport      = &Error{Type: ErrorTypeTransport}
	ErrThrottled      = &Error{Type: ErrorTypeRateLimit}
	ErrCheckpoint     = &Error{Type: ErrorTypeCheckpoint}
	ErrParsing        = &Error{Type: ErrorTypeParsing}
)

// NewValidation returns an error for input rejected before any request is sent.
func NewValidation(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewTransport wraps a network level failure.
func NewTransport(err error) *Error {
	return &Error{Type: ErrorTypeTransport, Message: fmt.Sprintf("network error: %v", err), Err: err}
}

// NewParsing wraps a response body that could not be decoded.
func NewParsing(code int, body []byte, err error) *Error {
	return &Error{
		Type:    ErrorTypeParsing,
		Message: fmt.Sprintf("failed to parse response: %v", err),
		Code:    code,
		Body:    body,
		Err:     err,
	}
}

// New builds an error of the given kind from a failed response.
func New(t ErrorType, code int, message, vendorType string, body []byte) *Error {
	return &Error{
		Type:       t,
		Message:    message,
		Code:       code,
		VendorType: vendorType,
		Body:       body,
	}
}

// As is a shortcut for extracting an *Error from a chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is is errors.Is from the standard library, re-exported so callers that
// import this package under the name errors need only one import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// TypeOf returns the kind of err, or "" when err is not one of ours.
func TypeOf(err error) ErrorType {
	if e, ok := As(err); ok {
		return e.Type
	}
	return ""
}

// IsSessionExpired reports whether the caller should relogin.
func IsSessionExpired(err error) bool {
	return stderrors.Is(err, ErrSessionExpired)
}

// IsRetryable checks if an error type should be retried by the caller
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeTransport, ErrorTypeRateLimit:
		return true
	case ErrorTypeValidation, ErrorTypeLogin, ErrorTypeSessionExpired, ErrorTypeCheckpoint, ErrorTypeParsing, ErrorTypeAPI:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429:
		return true
	case 400, 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
