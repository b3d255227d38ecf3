package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrCircuitOpen means the upstream has failed repeatedly and calls are
	// being short-circuited until the reset timeout passes.
	ErrCircuitOpen = errors.New("upstream circuit open")

	// ErrRateLimited means the outbound request budget is exhausted.
	ErrRateLimited = errors.New("outbound rate limit exceeded")

	// ErrUnauthorized means the bearer token was missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response from the remote property service, carrying
// the server-supplied message when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

// UserMessage returns the server's message, or a generic fallback suitable
// for display.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// IsNotFound reports whether err is a 404 from the upstream.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
