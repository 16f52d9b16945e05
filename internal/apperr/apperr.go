// Package apperr defines the error taxonomy shared by the ranking pipeline
// and its HTTP surface.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeUnsupportedFormat    Code = "UNSUPPORTED_FORMAT"
	CodeExtractionFailure    Code = "EXTRACTION_FAILURE"
	CodeArchiveLimitExceeded Code = "ARCHIVE_LIMIT_EXCEEDED"
	CodeModelNotLoaded       Code = "MODEL_NOT_LOADED"
	CodeInvalidParameter     Code = "INVALID_PARAMETER"
	CodeEmptyBatch           Code = "EMPTY_BATCH"
	CodeTimeout              Code = "TIMEOUT"
	CodeInternal             Code = "INTERNAL"
)

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// RequestLevel reports whether errors with this code reject a whole request
// rather than a single document.
func (c Code) RequestLevel() bool {
	switch c {
	case CodeInvalidParameter, CodeEmptyBatch, CodeArchiveLimitExceeded, CodeModelNotLoaded:
		return true
	default:
		return false
	}
}

// Error is a coded error with an optional cause.
type Error struct {
	code    Code
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *Error) Code() Code { return e.code }

// Message returns the message without the cause chain.
func (e *Error) Message() string { return e.message }

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to err. If err is nil, Wrap returns nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// CodeOf extracts the code of the first coded error in the chain. Context
// errors map to CodeTimeout; anything else is CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CodeTimeout
	}
	return CodeInternal
}

// Is reports whether any error in the chain carries code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps a code to the status returned to API clients.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidParameter, CodeEmptyBatch:
		return http.StatusBadRequest
	case CodeArchiveLimitExceeded:
		return http.StatusRequestEntityTooLarge
	case CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case CodeModelNotLoaded:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
