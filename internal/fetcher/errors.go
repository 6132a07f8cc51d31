package fetcher

import (
	"errors"
	"fmt"
)

// ErrUnrecognisedType indicates that a requested resource type is not in the
// supported set. It is returned before any client is resolved.
var ErrUnrecognisedType = errors.New("unrecognised resource type")

// UnrecognisedTypeError names the offending resource type.
type UnrecognisedTypeError struct {
	Type string
}

// Error implements the error interface.
func (e *UnrecognisedTypeError) Error() string {
	return fmt.Sprintf("unrecognised type=%s", e.Type)
}

// Unwrap returns ErrUnrecognisedType for use with errors.Is().
func (e *UnrecognisedTypeError) Unwrap() error {
	return ErrUnrecognisedType
}

// RequestError attaches the request path, and optionally an HTTP status code,
// to a failed list call. StatusCode is zero when the transport did not report one;
// the classifier then falls back to the Kubernetes API status in Err.
type RequestError struct {
	Path       string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("request %s failed", e.Path)
	}
	return fmt.Sprintf("request %s failed: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	return e.Err
}
