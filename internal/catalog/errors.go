package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrTransport indicates the request failed on the wire or the catalog
	// answered with a non-2xx status.
	ErrTransport = errors.New("catalog transport error")

	// ErrValidation indicates the catalog answered with a body of the wrong shape.
	ErrValidation = errors.New("invalid catalog response")

	// ErrNotFound indicates the requested image does not exist.
	ErrNotFound = errors.New("image not found")
)

// TransportError describes a failed HTTP exchange.
// StatusCode is 0 when the request never got a response.
type TransportError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: server error: %s - %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: server error: %s", e.Op, e.Status)
}

// Is makes errors.Is(err, ErrTransport) hold for every TransportError and
// errors.Is(err, ErrNotFound) hold for a 404.
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return true
	case ErrNotFound:
		return e.StatusCode == 404
	}
	return false
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError describes a response body that failed shape validation.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrValidation, e.Err)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
