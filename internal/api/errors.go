package api

import (
	"fmt"
	"net/http"
	"strings"
)

// AuthenticationError reports an HTTP 401: the session is invalid or expired.
// Recoverable by logging in again.
type AuthenticationError struct {
	Message string
}

// Error returns the error message.
func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "api: authentication required"
	}
	return fmt.Sprintf("api: authentication required: %s", e.Message)
}

// ServerRestartError reports that the backend lost its in-memory session and
// token state: an anti-forgery token rejection, a token-endpoint failure, or a
// connection failure resembling a down server. Recoverable by a full re-auth
// flow once the backend is reachable again.
type ServerRestartError struct {
	Message string
	Err     error // underlying transport or token-fetch error, when present
}

// Error returns the error message.
func (e *ServerRestartError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("api: server restarted: %s: %v", e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("api: server restarted: %s", e.Message)
	case e.Err != nil:
		return fmt.Sprintf("api: server restarted: %v", e.Err)
	default:
		return "api: server restarted"
	}
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ServerRestartError) Unwrap() error {
	return e.Err
}

// APIError is any other non-2xx response. Message preserves the server-supplied
// error text verbatim, or the status line when the body carries none.
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (HTTP %d)", e.Message, e.StatusCode)
}

// classifyResponse maps a non-2xx status and the server's error message to a
// classified failure:
//   - 401 always becomes *AuthenticationError.
//   - 403 whose message names the anti-forgery token becomes *ServerRestartError
//     (the backend restarted and lost the token state that minted it).
//   - Everything else becomes *APIError carrying the message verbatim.
//
// Token-cache invalidation is the caller's job; classification has no side
// effects.
func classifyResponse(statusCode int, message string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	switch {
	case statusCode == http.StatusUnauthorized:
		return &AuthenticationError{Message: message}
	case statusCode == http.StatusForbidden && mentionsCSRF(message):
		return &ServerRestartError{Message: message}
	default:
		return &APIError{StatusCode: statusCode, Message: message}
	}
}

// mentionsCSRF reports whether a server error message refers to the
// anti-forgery mechanism.
func mentionsCSRF(message string) bool {
	return strings.Contains(strings.ToLower(message), "csrf")
}
