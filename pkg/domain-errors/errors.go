// Package domainerrors carries the failure taxonomy engine methods surface to
// callers. Stores return sentinel errors (pkg/platform/sentinel); services
// translate them into coded errors here so the boundary layer can map codes to
// transport responses without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code enumerates the failure kinds of the engine surface.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeDuplicateIdentity  Code = "duplicate_identity"
	CodeUnknownRole        Code = "unknown_role"
	CodeRoleNotEligible    Code = "role_not_eligible"
	CodeInvalidStatus      Code = "invalid_status"
	CodeUnauthorized       Code = "unauthorized"
	CodeConflict           Code = "conflict"
	CodeIOFailure          Code = "io_failure"
	CodeUnsupportedService Code = "unsupported_service_type"
	CodeBadRequest         Code = "bad_request"
	CodeInternal           Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
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

// New builds a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error from a format string.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
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

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in a service.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
