package upstream

import (
	"fmt"
	"strings"
)

// TransportError is a failure to obtain any response from a URL: dial
// errors, resets, timeouts.
type TransportError struct {
	// URL is the full outbound URL.
	URL string

	// Err is the underlying client error.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// WrongEndpointError records that a candidate served an HTML page.
type WrongEndpointError struct {
	URL    string
	Status int
}

// Error implements the error interface.
func (e *WrongEndpointError) Error() string {
	return fmt.Sprintf("%s returned an HTML page (status %d), not the API", e.URL, e.Status)
}

// UnrecognizedResponseError records that a candidate answered with a body
// that is neither HTML nor JSON.
type UnrecognizedResponseError struct {
	URL     string
	Status  int
	Snippet string
}

// Error implements the error interface.
func (e *UnrecognizedResponseError) Error() string {
	return fmt.Sprintf("%s returned an unrecognized response (status %d): %q", e.URL, e.Status, e.Snippet)
}

// ExhaustedError is returned when no candidate prefix yielded a
// recognizable API response.
type ExhaustedError struct {
	// URLs lists every URL attempted, in order.
	URLs []string

	// Attempts holds the per-candidate details.
	Attempts []Attempt

	// LastErr is the failure of the final candidate.
	LastErr error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no API found after %d candidate(s) [%s]: %v",
		len(e.URLs), strings.Join(e.URLs, ", "), e.LastErr)
}

// Unwrap returns the last candidate's error.
func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// LoginError is returned when the automatic session login fails.
type LoginError struct {
	// Status is the upstream status when the API rejected the login.
	Status int

	// Message is the upstream error message, if any.
	Message string

	// Err is the underlying failure (e.g. an *ExhaustedError).
	Err error
}

// Error implements the error interface.
func (e *LoginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login failed: %v", e.Err)
	}
	if e.Status > 0 {
		return fmt.Sprintf("login rejected (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("login failed: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *LoginError) Unwrap() error {
	return e.Err
}

func snippet(body []byte) string {
	const limit = 120
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
