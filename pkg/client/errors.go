package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Category classifies a failed API call for display
type Category string

const (
	CategoryTimeout         Category = "timeout"
	CategoryNetwork         Category = "network"
	CategoryBadRequest      Category = "bad_request"
	CategoryNotFound        Category = "not_found"
	CategoryTooLarge        Category = "too_large"
	CategoryUnsupportedType Category = "unsupported_type"
	CategoryValidation      Category = "validation"
	CategoryRateLimited     Category = "rate_limited"
	CategoryServer          Category = "server"
	CategoryRequestFailed   Category = "request_failed"
	CategoryUnexpected      Category = "unexpected"
)

// Error is returned by every Client call that fails
type Error struct {
	Category Category
	// Status is the HTTP status, zero when no response was received
	Status int
	// Message is the human readable text shown to users
	Message string
	// ServerMessage is the "message" field of the response body, if any
	ServerMessage string
	Err           error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Category == CategoryNotFound
}

// CategoryOf returns the category of err, CategoryUnexpected for foreign errors
func CategoryOf(err error) Category {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Category
	}
	return CategoryUnexpected
}

func transportError(err error) *Error {
	if isTimeout(err) {
		return &Error{
			Category: CategoryTimeout,
			Message:  "Request timed out. Please check your connection and try again.",
			Err:      err,
		}
	}
	return &Error{
		Category: CategoryNetwork,
		Message:  "Network error. Please check if the server is running and accessible.",
		Err:      err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusError(status int, serverMessage string) *Error {
	message := serverMessage
	if message == "" {
		message = http.StatusText(status)
	}

	e := &Error{Status: status, ServerMessage: serverMessage}
	switch status {
	case http.StatusBadRequest:
		e.Category = CategoryBadRequest
		e.Message = "Invalid request: " + message
	case http.StatusNotFound:
		e.Category = CategoryNotFound
		e.Message = "Resource not found"
	case http.StatusRequestEntityTooLarge:
		e.Category = CategoryTooLarge
		e.Message = "File size too large. Please upload a smaller image."
	case http.StatusUnsupportedMediaType:
		e.Category = CategoryUnsupportedType
		e.Message = "Unsupported file type. Please upload a valid image file."
	case http.StatusUnprocessableEntity:
		e.Category = CategoryValidation
		e.Message = "Validation error: " + message
	case http.StatusTooManyRequests:
		e.Category = CategoryRateLimited
		e.Message = "Too many requests. Please try again later."
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		e.Category = CategoryServer
		e.Message = "Server error. Please try again later."
	default:
		e.Category = CategoryRequestFailed
		e.Message = "Request failed: " + message
	}
	e.Err = fmt.Errorf("api returned status %d", status)
	return e
}

func unexpectedError(err error) *Error {
	return &Error{
		Category: CategoryUnexpected,
		Message:  "An unexpected error occurred. Please try again.",
		Err:      err,
	}
}
