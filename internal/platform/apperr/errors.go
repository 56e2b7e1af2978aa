// Package apperr defines the domain error type shared by every service in
// the dashboard backend.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeSourceUnavailable    Code = "SOURCE_UNAVAILABLE"
	CodeEmptySource          Code = "EMPTY_SOURCE"
	CodeInvalidStepIndex     Code = "INVALID_STEP_INDEX"
	CodeInvalidImage         Code = "INVALID_IMAGE"
	CodeConsentRequired      Code = "CONSENT_REQUIRED"
	CodeAnalysisNotReady     Code = "ANALYSIS_NOT_READY"
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"
	CodeInvalidField         Code = "INVALID_FIELD"
	CodeRequestTooLarge      Code = "REQUEST_TOO_LARGE"
	CodeNotFound             Code = "NOT_FOUND"
	CodeUnavailable          Code = "UNAVAILABLE"
	CodeInternal             Code = "INTERNAL"
)

// HTTPStatus maps the code to the status written by HTTP handlers.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidStepIndex, CodeInvalidImage, CodeMissingRequiredField, CodeInvalidField:
		return http.StatusBadRequest
	case CodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeConsentRequired, CodeAnalysisNotReady:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeSourceUnavailable, CodeEmptySource, CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Human-readable message
	Metadata map[string]string // Additional context (field names, indexes)
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface. Only Message is returned; the
// cause may carry upstream URLs or credentials and is kept for logs.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error carrying metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether err's chain contains a domain error with code.
func HasCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

// As finds the first *Error in err's chain.
func As(err error, target **Error) bool {
	return errors.As(err, target)
}
