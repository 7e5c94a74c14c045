package client

import (
	"errors"
	"fmt"
)

// Precondition violations. They are reported before any I/O.
var (
	// ErrEmptyMethod is returned when the method name is empty.
	ErrEmptyMethod = errors.New("client: method name must not be empty")
	// ErrInvalidParams is returned when params cannot be encoded or fail
	// validation against a registered signature.
	ErrInvalidParams = errors.New("client: invalid params")
	// ErrUnknownMethod is returned by a strict registry for unregistered methods.
	ErrUnknownMethod = errors.New("client: unknown method")
)

// Reply classification failures.
var (
	// ErrMalformedResponse is returned when the reply body is not valid JSON.
	ErrMalformedResponse = errors.New("Response is not valid JSON")
	// ErrSpecViolation is returned when a reply breaks the JSON-RPC 2.0
	// result/error contract.
	ErrSpecViolation = errors.New("Response must have 'error' or 'result' properties")
	// ErrInvalidResult is returned when a result fails validation against a
	// registered signature.
	ErrInvalidResult = errors.New("client: invalid result")
	// ErrResultDecode is returned when a result cannot be decoded into the
	// caller's value.
	ErrResultDecode = errors.New("client: cannot decode result")
)

// ErrNoResponse is returned when an exchanger reports neither a reply nor
// an error.
var ErrNoResponse = errors.New("client: transport returned no response")

// StatusError is returned in strict mode when the transport reports a
// non-success status. The reply body is not inspected.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("client: unexpected status %s", e.Status)
	}
	return fmt.Sprintf("client: unexpected status %d", e.StatusCode)
}
