package librelink

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned by authenticated endpoints when no login
// has installed a token yet. It is raised before any network I/O happens.
var ErrNotAuthenticated = errors.New("not authenticated: login required")

// NetworkError wraps transport-level failures (DNS, connect, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned %d (%s)", e.StatusCode, http.StatusText(e.StatusCode))
}

// ProtocolError is a success HTTP response whose body does not match the
// provider contract (missing token, missing user id, malformed JSON).
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected API response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected API response: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// LoginError is a well-formed login response carrying a non-zero provider
// status code. The code is surfaced to the user as-is.
type LoginError struct {
	Status int
	Region string
}

func (e *LoginError) Error() string {
	if e.Region != "" {
		return fmt.Sprintf("login failed on regional server %s: server returned status %d", e.Region, e.Status)
	}
	return fmt.Sprintf("login failed: server returned status %d", e.Status)
}
