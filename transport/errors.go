package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error classes surfaced to callers. Use errors.Is against these to branch on
// the kind of failure without inspecting status codes.
var (
	SessionExpiredErr = errors.New("session expired")
	UnauthorizedErr   = errors.New("unauthorized")
	ForbiddenErr      = errors.New("insufficient privilege")
	ServerErr         = errors.New("server error")
	ValidationErr     = errors.New("request rejected")
	TransportErr      = errors.New("transport failure")
)

// Error is the normalized failure shape for every request that did not
// succeed. Raw transport errors and raw HTTP statuses are never passed
// through to callers without this wrapper.
type Error struct {
	StatusCode int             // HTTP status, 0 for network/timeout failures
	Message    string          // Backend-provided message when available
	Data       json.RawMessage // Raw backend payload, if any
	class      error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.class, e.Message)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.class, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.class
}

// envelope is the backend's standard response wrapper, decoded only far
// enough to pull out a human-readable message.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewStatusError normalizes a failure HTTP response into an Error. The
// backend message is used when the payload carries one.
func NewStatusError(statusCode int, body []byte) *Error {
	message := http.StatusText(statusCode)
	var env envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
			message = env.Message
		}
	}

	var class error
	switch {
	case statusCode == http.StatusUnauthorized:
		class = UnauthorizedErr
	case statusCode == http.StatusForbidden:
		class = ForbiddenErr
	case statusCode >= 500:
		class = ServerErr
	default:
		class = ValidationErr
	}

	return &Error{
		StatusCode: statusCode,
		Message:    message,
		Data:       body,
		class:      class,
	}
}

// NewTransportError wraps a network or timeout failure. It is deliberately a
// separate class from HTTP-status errors: a hung connection is never a 401.
func NewTransportError(err error) *Error {
	return &Error{
		Message: err.Error(),
		class:   TransportErr,
	}
}

// NewSessionExpiredError marks the terminal authentication failure produced
// when a 401 could not be corrected by a token refresh.
func NewSessionExpiredError(message string) *Error {
	if message == "" {
		message = "session expired, please sign in again"
	}
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Message:    message,
		class:      SessionExpiredErr,
	}
}
