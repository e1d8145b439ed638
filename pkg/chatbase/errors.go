package chatbase

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-voicebridge/internal/config"
)

// Construction failures. Both match config.ErrMissingRequired.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey error = &config.MissingError{Name: config.EnvChatbaseAPIKey}

	// ErrNoChatbotID is returned when the chatbot id is missing.
	ErrNoChatbotID error = &config.MissingError{Name: config.EnvChatbaseChatbotID}
)

// TransportError wraps a network, timeout or connection failure.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("chatbase: request failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError represents an HTTP error status from the backend.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the response body, truncated to MaxErrorBody characters.
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("chatbase http %d: %s", e.StatusCode, e.Body)
}

// IsUnauthorized returns true for HTTP 401.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsRateLimited returns true for HTTP 429.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true for HTTP 5xx.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// DecodeError is returned when a success body is not a JSON object.
type DecodeError struct {
	Body string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("chatbase: decode response: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MalformedError is returned when a success body has no usable text.
type MalformedError struct {
	Payload map[string]any
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("chatbase returned invalid response: %v", e.Payload)
}

// truncate keeps at most n characters of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var errNotObject = errors.New("response is not a JSON object")
