package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind represents the category of a domain failure
type Kind string

const (
	KindValidation      Kind = "validation"
	KindDuplicate       Kind = "duplicate"
	KindNotFound        Kind = "not_found"
	KindUnsupportedType Kind = "unsupported_type"
	KindTooLarge        Kind = "too_large"
	KindUnavailable     Kind = "unavailable"
	KindUnknown         Kind = "unknown"
)

// Error is the tagged error raised by the stores and the service layer
type Error struct {
	Kind    Kind
	Message string
	// Fields lists the offending input fields for validation failures
	Fields []string
	Err    error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error for the given fields
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// MissingFields creates a validation error naming every missing required field
func MissingFields(fields ...string) *Error {
	return Validation("Missing required fields: "+strings.Join(fields, ", "), fields...)
}

// Duplicate creates a uniqueness violation error
func Duplicate(message string, cause error) *Error {
	return &Error{Kind: KindDuplicate, Message: message, Err: cause}
}

// NotFound creates a not found error for a resource
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// UnsupportedType creates an error for a rejected upload media type
func UnsupportedType(mediaType string) *Error {
	return &Error{Kind: KindUnsupportedType, Message: fmt.Sprintf("unsupported media type %q", mediaType)}
}

// TooLarge creates an error for an upload exceeding limit bytes
func TooLarge(limit int64) *Error {
	return &Error{Kind: KindTooLarge, Message: fmt.Sprintf("upload exceeds %d bytes", limit)}
}

// Unavailable wraps a storage connectivity failure
func Unavailable(operation string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: operation + ": storage unavailable", Err: cause}
}

// Unknown wraps any other failure
func Unknown(operation string, cause error) *Error {
	return &Error{Kind: KindUnknown, Message: operation, Err: cause}
}

// KindOf reports the kind of err, KindUnknown for untagged errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As extracts the tagged error from err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
