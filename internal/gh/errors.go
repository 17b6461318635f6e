package gh

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredentials indicates no API token is configured. The client
	// checks this before building a request, so no network call is made.
	ErrNoCredentials = errors.New("no API token configured")
	// ErrInvalidRequest indicates the inputs could not form a valid request
	// (empty or malformed path segments, unknown state filter, empty body).
	ErrInvalidRequest = errors.New("invalid request")
)

// TransportError indicates the request never produced an HTTP response:
// DNS failure, refused connection, TLS failure, or timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError indicates the API answered with a status code other than the
// one the operation expects.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// DecodeError indicates the response body did not match the expected schema.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
