package fetch

import (
	"errors"
	"fmt"
)

// ErrMissingURL is reported when Execute is called without a URL.
var ErrMissingURL = errors.New("URL is required")

const unknownErrorMessage = "Unknown error"

// TransportError means no response was obtained.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil || e.Err.Error() == "" {
		return unknownErrorMessage
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatusError means a response arrived with a non-success status.
type HTTPStatusError struct {
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// DecodeError means a success response carried a body that is not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "Invalid JSON response"
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
