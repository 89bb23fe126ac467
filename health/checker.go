package health

import (
	"context"
	"time"
)

// Status is the health of a single component or of the service overall.
type Status int

const (
	// StatusHealthy indicates the component is fully operational.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component works but with reduced
	// capacity or elevated risk.
	StatusDegraded
	// StatusUnhealthy indicates the component is not operational.
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of one health check.
type Result struct {
	// Status is the component health.
	Status Status

	// Message explains the status in human terms.
	Message string

	// Details carries check-specific metadata, such as breaker state or
	// bulkhead occupancy.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Checked is when the check ran.
	Checked time.Time

	// Err is set when the check itself failed.
	Err error
}

// Healthy builds a healthy result with the given message.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, Checked: time.Now()}
}

// Degraded builds a degraded result with the given message.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message, Checked: time.Now()}
}

// Unhealthy builds an unhealthy result with the given message and cause.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Err: err, Checked: time.Now()}
}

// WithDetails returns a copy of the result carrying the given metadata.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker reports the health of one component.
//
// Contract:
//   - Concurrency: Check must be safe for concurrent use.
//   - Context: Check should honor ctx cancellation; the registry
//     enforces a deadline regardless.
type Checker interface {
	// Name identifies this checker within a registry.
	Name() string

	// Check runs the health check.
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc wraps fn as a named Checker.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string { return f.name }

func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }
