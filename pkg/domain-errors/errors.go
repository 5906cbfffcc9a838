// Package domainerrors defines the coded error type shared by all services.
//
// Stores and infrastructure return sentinel errors (pkg/platform/sentinel);
// services translate them into coded errors here so handlers can map a code
// to an HTTP status and a stable machine-readable string without inspecting
// error text.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. The string value is what callers see in the
// JSON error envelope, so treat it as a wire contract.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"

	// Case-progression codes. These correspond one-to-one to the recoverable
	// business failures the recovery pipeline can surface to a caller.
	CodeStageViolation     Code = "stage_violation"
	CodePreconditionFailed Code = "precondition_failed"
	CodeCaseClosed         Code = "case_closed"
	CodeAlreadyExpired     Code = "already_expired"
	CodeAlreadyCompleted   Code = "already_completed"
	CodeNoBailiffAssigned  Code = "no_bailiff_assigned"

	// CodeCollaborator marks persistence/network failures. A collaborator
	// error never implies the write happened; callers should re-read instead
	// of retrying blindly.
	CodeCollaborator Code = "collaborator_unavailable"
)

// Error carries a code, a human-readable message, and an optional cause.
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

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
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

// Is is an alias of HasCode kept for call-site readability:
//
//	if dErrors.Is(err, dErrors.CodeBadRequest) { ... }
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so nothing leaks internals to the wire by accident.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the message from err. Uncoded errors return an empty
// message; handlers must not echo raw error text for those.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeNoBailiffAssigned:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeStageViolation, CodeCaseClosed,
		CodeAlreadyExpired, CodeAlreadyCompleted, CodeInvariantViolation:
		return http.StatusConflict
	case CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case CodeCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
