// Package apperr defines the error taxonomy surfaced to API callers.
//
// Every failure a service can report deliberately is an *Error carrying a
// Kind (which decides the HTTP status) and a stable Code string that lets a
// caller tell the named failures apart. Anything that is not an *Error is
// treated as an internal failure.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindPreconditionFailed
	KindForbidden
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation_failed"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %d invalid field(s)", e.Message, len(e.Fields))
}

// New returns a classified error. Package-level sentinels built with New are
// matched with errors.Is.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Common sentinels shared across packages.
var (
	ErrForbidden    = New(KindForbidden, "FORBIDDEN", "you are not allowed to perform this action")
	ErrUnauthorized = New(KindUnauthorized, "UNAUTHORIZED", "authentication required")
)

// Validation builds a ValidationFailed error with field-level detail.
func Validation(fields ...FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: "invalid input",
		Fields:  fields,
	}
}

// InvalidField is shorthand for a single-field validation failure.
func InvalidField(field, message string) *Error {
	return Validation(FieldError{Field: field, Message: message})
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
