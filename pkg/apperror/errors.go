// =============================================================================
// Oficina Recibos - Application Errors
// =============================================================================
//
// Every action of the tool fails with one of a small set of error kinds. The
// kind decides how the failure is presented to the user:
//
//   | Kind         | Raised when                                | Shown as |
//   |--------------|--------------------------------------------|----------|
//   | Validation   | a required field is missing or out of range| warning  |
//   | NotFound     | a search or delete target does not exist   | warning  |
//   | IO           | the store or a document cannot be written  | critical |
//   | Connectivity | the postal code lookup cannot be reached   | warning  |
//   | Internal     | anything unexpected                        | critical |
//
// Errors are values: callers inspect them with errors.As or KindOf, never by
// comparing messages.
//
// =============================================================================

package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindIO
	KindConnectivity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindIO:
		return "io"
	case KindConnectivity:
		return "connectivity"
	default:
		return "internal"
	}
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}
	return f.Field + ": " + f.Message
}

// Error is the error type returned by every action of the application.
type Error struct {
	// Kind decides how the error is reported.
	Kind Kind

	// Op names the action that failed, e.g. "store.save".
	Op string

	// Message is a human-readable description.
	Message string

	// Fields lists individual field problems of a validation error.
	Fields []FieldError

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.String())
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(msgs, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewValidationError creates a validation error listing the offending fields.
func NewValidationError(op, message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message, Fields: fields}
}

// NewNotFoundError creates a not found error for the named resource.
func NewNotFoundError(op, resource string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: resource + " not found"}
}

// NewIOError wraps a storage or file system failure.
func NewIOError(op string, err error) *Error {
	return &Error{Kind: KindIO, Op: op, Message: "i/o failure", Err: err}
}

// NewConnectivityError wraps a failure to reach an external service.
func NewConnectivityError(op string, err error) *Error {
	return &Error{Kind: KindConnectivity, Op: op, Message: "service unreachable", Err: err}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// INSPECTION
// =============================================================================

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
