package resilience

import (
	"errors"
	"fmt"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker refuses a call,
	// either because it is open or because the half-open probe budget is
	// already spent.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrBulkheadFull is returned when both the concurrency limit and the
	// wait queue are saturated at admission time, and for tasks failed by
	// Drain.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrBulkheadTimeout is returned when a task waited in the bulkhead
	// queue past its deadline.
	ErrBulkheadTimeout = errors.New("resilience: bulkhead queue timeout")

	// ErrMaxRetriesExceeded is returned when retry attempts are exhausted.
	// The concrete error is a *MaxRetriesError carrying the attempt count
	// and the last underlying failure.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrTimeout is returned when an attempt loses the race against its
	// deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// MaxRetriesError reports retry exhaustion. It matches both
// ErrMaxRetriesExceeded and the terminal underlying error under errors.Is.
type MaxRetriesError struct {
	// Retries is the number of retry attempts performed, not counting the
	// initial invocation.
	Retries int

	// LastErr is the failure observed on the final attempt.
	LastErr error
}

// Error implements the error interface.
func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("resilience: max retries exceeded after %d retries: %v", e.Retries, e.LastErr)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *MaxRetriesError) Unwrap() []error {
	return []error{ErrMaxRetriesExceeded, e.LastErr}
}
