// Package domainerrors defines the coded errors the service layer returns to
// transports. Stores return pkg/platform/sentinel errors; services translate
// those facts into one of these codes so handlers can map them to HTTP
// statuses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks bad input shape: empty required fields, malformed
	// email, CPF checksum failure, unknown room.
	CodeValidation Code = "validation"
	// CodeConflict marks business-rule violations such as a duplicate
	// in-building check-in.
	CodeConflict Code = "conflict"
	// CodeCapacity marks a full room.
	CodeCapacity Code = "capacity"
	// CodeNotFound marks a referenced record that does not exist.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks missing or invalid operator credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeBadRequest marks a request the transport could not parse.
	CodeBadRequest Code = "bad_request"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error with a human-readable message. Messages for
// admission failures are shown verbatim in the Portuguese-language UI and must
// not be rephrased.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability in handlers.
func Is(err error, code Code) bool { return HasCode(err, code) }

// MessageOf returns the human-readable message of a domain error, or the plain
// error string for anything else.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// CodeOf returns the code carried by err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict, CodeCapacity:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
