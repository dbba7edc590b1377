// ABOUTME: Typed API error carrying HTTP status, message, and field errors
// ABOUTME: Parsed from the platform's {error, fields?} / {message} failure envelopes

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is a failed API call. Fields holds per-field validation messages when
// the server returns them (registration, login forms).
type Error struct {
	Status  int               `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %s", e.Message)
}

// Unauthorized reports whether the error is a 401.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// ParseError builds an *Error from a failure response body. Bodies that are
// not the expected envelope still produce a usable error with the HTTP status.
func ParseError(status int, body []byte) *Error {
	e := &Error{Status: status}
	if len(body) == 0 {
		return e
	}
	if err := json.Unmarshal(body, e); err != nil {
		e.Message = http.StatusText(status)
		return e
	}
	if e.Message == "" {
		// Some endpoints use {message} instead of {error} on failure.
		var alt struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &alt) == nil {
			e.Message = alt.Message
		}
	}
	return e
}
