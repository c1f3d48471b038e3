package vrchat

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidURL is returned before any I/O when a request target does not
// use the http or https scheme.
var ErrInvalidURL = errors.New("URL must start with http:// or https://")

// TransportError wraps a failure to reach the server or read its reply
// (DNS, connect, TLS, socket, timeout).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned for any non-2xx response. Body holds the
// response text when it could be read.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Body == "" {
		return "request failed with status: " + status
	}
	return fmt.Sprintf("request failed with status: %s: %s", status, e.Body)
}

// SerializationError is returned when a body that should parse as a number
// or JSON does not.
type SerializationError struct {
	Body string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to parse response %q: %v", e.Body, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is an HTTPStatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *HTTPStatusError
	return errors.As(err, &se) && se.StatusCode == code
}
