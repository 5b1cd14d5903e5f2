package schema

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout marks an operation that ran out of time, as opposed to one that failed.
var ErrTimeout = errors.New("operation timed out")

// InvalidWindowError reports a non-positive window span or an inverted time range.
type InvalidWindowError struct {
	Span  time.Duration
	Start time.Time
	End   time.Time
}

func (e *InvalidWindowError) Error() string {
	if e.Span <= 0 {
		return fmt.Sprintf("invalid window: span must be positive (got %s)", e.Span)
	}
	return fmt.Sprintf("invalid window: start %s is after end %s", e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// UnresolvableRemoteError reports a remote URL that cannot be split into owner and name.
type UnresolvableRemoteError struct {
	Remote string
}

func (e *UnresolvableRemoteError) Error() string {
	return fmt.Sprintf("cannot resolve owner/name from remote %q", e.Remote)
}

// InsufficientHistory explains why an analysis produced no record.
// It is reported on the result rather than returned as an error.
type InsufficientHistory struct {
	Commits  int
	Required int
}

func (e *InsufficientHistory) Error() string {
	return fmt.Sprintf("insufficient history: %d commits in scope, at least %d required", e.Commits, e.Required)
}

// TimeoutError wraps ErrTimeout with the operation name and its limit.
func TimeoutError(operation string, limit time.Duration) error {
	return fmt.Errorf("%s exceeded %s: %w", operation, limit, ErrTimeout)
}
