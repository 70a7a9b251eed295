// ABOUTME: Error values returned by the conversion service client.
// ABOUTME: APIError carries the HTTP status and server message of a non-2xx response.
package client

import (
	"errors"
	"fmt"
)

// ErrEmptyMarkdown is returned when Convert is called with blank input; no
// request is sent because the service would reject it.
var ErrEmptyMarkdown = errors.New("markdown input is empty")

// APIError is a non-2xx response from the conversion service.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("conversion service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("conversion service returned status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the failure is worth retrying on the next edit.
// Client errors (4xx) other than 408 and 429 are not.
func (e *APIError) Temporary() bool {
	if e.StatusCode == 408 || e.StatusCode == 429 {
		return true
	}
	return e.StatusCode >= 500
}
