package telegram

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrMissingToken is returned by NewClient when no API token is supplied.
var ErrMissingToken = errors.New("telegram: invalid API token")

// APIError is returned when the Bot API answers with ok=false.
type APIError struct {
	Method      string `json:"-"`
	Code        int    `json:"error_code"`
	Description string `json:"description"`
	RetryAfter  int    `json:"retry_after,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	prefix := "telegram: "
	if e.Method != "" {
		prefix += e.Method + ": "
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s%d %s (retry after %ds)", prefix, e.Code, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("%s%d %s", prefix, e.Code, e.Description)
}

// TimeoutError reports that a request exceeded its client-side deadline
// before the API answered. For getUpdates this is the normal outcome of a
// long poll that saw no traffic.
type TimeoutError struct {
	Method string
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("telegram: %s timed out: %v", e.Method, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Timeout reports true so TimeoutError satisfies net.Error-style checks.
func (e *TimeoutError) Timeout() bool { return true }

// IsTimeout reports whether err is, or wraps, a *TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
