package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/memoru/internal/shared"
)

// UnknownErrorMessage is used when an error response body is not JSON.
const UnknownErrorMessage = "Unknown error"

// HTTPError is a non-2xx, non-401 response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap matches [shared.ErrAPIRequest], and [shared.ErrServiceUnavailable] for gateway statuses.
func (e *HTTPError) Unwrap() []error {
	switch e.Status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return []error{shared.ErrAPIRequest, shared.ErrServiceUnavailable}
	}
	return []error{shared.ErrAPIRequest}
}

// SessionExpiredError reports that a 401 could not be recovered by refreshing the token.
// Cause holds the refresh failure when there was one.
type SessionExpiredError struct {
	Cause error
}

// ErrSessionExpired matches every [SessionExpiredError] with [errors.Is].
var ErrSessionExpired = &SessionExpiredError{}

func (e *SessionExpiredError) Error() string {
	return "Session expired"
}

func (e *SessionExpiredError) Unwrap() error {
	return e.Cause
}

func (e *SessionExpiredError) Is(target error) bool {
	return target == ErrSessionExpired || target == shared.ErrNotAuthenticated
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// errorMessage extracts the "message" field of an error body.
//
// A body that is not JSON yields [UnknownErrorMessage]; JSON without a usable message yields "HTTP <status>".
func errorMessage(status int, body []byte) string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return UnknownErrorMessage
	}

	if obj, ok := payload.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
