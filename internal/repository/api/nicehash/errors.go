package nicehash

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAlgorithmNotFound is returned when the algorithm list has no settings
// for the requested algorithm.
var ErrAlgorithmNotFound = errors.New("nicehash: algorithm settings not found")

// ConfigError reports missing or malformed credentials or client settings.
// It is never worth retrying.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("nicehash: invalid configuration: %s %s", e.Field, e.Reason)
}

// TransportError reports a request that never produced an HTTP response:
// DNS, connection, TLS or body read failures.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("nicehash: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a response the platform answered with a status other than 200.
// Body is empty when the response carried none.
type APIError struct {
	Status int
	Reason string
	Body   []byte
}

func (e *APIError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("%d: %s: %s", e.Status, e.Reason, e.Body)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Reason)
}

// Unauthorized reports a rejected signature or key. Clock skew and
// credentials are the usual suspects.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// ParamsError reports endpoint parameters that failed validation before any
// request was sent.
type ParamsError struct {
	Path string
	Err  error
}

func (e *ParamsError) Error() string {
	return fmt.Sprintf("nicehash: invalid parameters for %s: %v", e.Path, e.Err)
}

func (e *ParamsError) Unwrap() error {
	return e.Err
}
