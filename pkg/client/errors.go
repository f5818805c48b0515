package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SessionExpiredMessage is what the user sees on any 401, regardless of what
// the backend put in the body.
const SessionExpiredMessage = "Your session has expired. Please log in again."

// APIError is the normalized shape of every backend failure. Structured
// backend errors carry {error, message, details}; transport failures and
// unstructured bodies fall back to generic text.
type APIError struct {
	Status  int
	Kind    string
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Kind)
	}
	return fmt.Sprintf("HTTP %d: %s: %s", e.Status, e.Kind, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an APIError with the
// given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == code
	}
	return false
}

// Normalize converts a non-2xx response body into an APIError. It is a pure
// function: the same status and body always produce the same value.
func Normalize(status int, body []byte) *APIError {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	// An unstructured body is fine; the zero struct falls through to defaults.
	json.Unmarshal(body, &parsed) //nolint:errcheck

	kind := parsed.Error
	if kind == "" {
		kind = "request failed"
	}
	message := parsed.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(status)
	}
	details := parsed.Details
	if details == "" {
		details = fmt.Sprintf("Status: %d", status)
	}

	return &APIError{Status: status, Kind: kind, Message: message, Details: details}
}
