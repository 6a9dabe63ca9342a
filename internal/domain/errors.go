package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrForbidden   = errors.New("access forbidden")
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrNetwork     = errors.New("network error")
	ErrDecode      = errors.New("content decode error")
	ErrValidation  = errors.New("validation error")

	ErrConfigNotFound = errors.New("feed config not found")
	ErrNoPostsDir     = errors.New("posts directory not found")
)

// APIError carries the status of a non-2xx, non-304 response that does not
// map to one of the sentinel errors above.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}
