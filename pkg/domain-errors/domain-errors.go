// Package domainerrors carries a stable error code from services to the edge.
// Services return *Error; transports map Code to a status and wire string.
package domainerrors

import "errors"

type Code string

// Generic codes.
const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInvariantViolation Code = "invariant_violation"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// CodeUnavailable means the ledger or a store could not be reached. It is the
// only code a client should retry.
const CodeUnavailable Code = "unavailable"

// Terminal listing verification rejections, one per pipeline stage.
const (
	CodeNotRegistered           Code = "not_registered"
	CodeRegistryInconsistent    Code = "registry_inconsistent"
	CodeIdentityMismatch        Code = "identity_mismatch"
	CodeUnpublishedRegistration Code = "unpublished_registration"
	CodeDuplicateListing        Code = "duplicate_listing"
)

// Error is a coded failure. Message is safe to show to clients; Err is not.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, New(code, "")) works.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Code == e.Code
	}
	return false
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and client message to err. A code already present in
// err's chain wins over the one passed in, so the first layer to classify a
// failure decides its code.
func Wrap(err error, code Code, msg string) error {
	var inner *Error
	if errors.As(err, &inner) {
		code = inner.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err's chain holds an *Error with code.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IsRetryable(err error) bool {
	return HasCode(err, CodeUnavailable)
}
