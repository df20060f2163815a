package apiclient

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
)

// APIError is returned for every non-2xx response from the remote API
type APIError struct {
	StatusCode int    // HTTP status returned by the API
	Message    string // Message from the API body when present
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api %s %s: %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// StatusCode extracts the HTTP status from err; 0 means the request never got a response
func StatusCode(err error) int {
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsNetwork reports whether err is a transport failure (no response received)
func IsNetwork(err error) bool {
	return apperrors.Is(err, apperrors.ErrNetwork)
}

// errorBody covers the error shapes the API uses
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
