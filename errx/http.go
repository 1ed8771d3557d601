package errx

import (
	"encoding/json"
	"fmt"
)

// HTTPError is a framework level error that already carries an HTTP status
// and a response body. The body is either a string or a structured value.
type HTTPError struct {
	Status int
	Body   any
	cause  error
}

// NewHTTPError creates an HTTPError with the given body and status
func NewHTTPError(body any, status int) *HTTPError {
	return &HTTPError{Status: status, Body: body}
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	switch b := e.Body.(type) {
	case string:
		return fmt.Sprintf("HTTP %d: %s", e.Status, b)
	case nil:
		return fmt.Sprintf("HTTP %d", e.Status)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Sprintf("HTTP %d: %v", e.Status, b)
		}
		return fmt.Sprintf("HTTP %d: %s", e.Status, data)
	}
}

// Kind implements Kinded
func (e *HTTPError) Kind() *Kind { return KindHTTP }

// Unwrap returns the underlying cause
func (e *HTTPError) Unwrap() error { return e.cause }

// WithCause attaches an underlying cause and returns the same error
func (e *HTTPError) WithCause(cause error) *HTTPError {
	e.cause = cause
	return e
}
