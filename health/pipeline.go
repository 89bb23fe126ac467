package health

import (
	"context"
	"fmt"
	"time"

	"github.com/outrigger-io/outrigger/resilience"
)

// BreakerChecker derives health from a circuit breaker's state. A closed
// breaker is healthy, a half-open breaker is degraded while probes run,
// and an open breaker is unhealthy.
func BreakerChecker(pipeline string, br *resilience.Breaker) Checker {
	return NewCheckerFunc(pipeline+".breaker", func(ctx context.Context) Result {
		m := br.Metrics()
		details := map[string]any{
			"state":    m.State.String(),
			"failures": m.Failures,
		}
		if !m.LastFailure.IsZero() {
			details["last_failure"] = m.LastFailure.UTC().Format(time.RFC3339)
		}

		switch m.State {
		case resilience.StateOpen:
			return Unhealthy(
				fmt.Sprintf("circuit open after %d failures", m.Failures),
				resilience.ErrCircuitOpen,
			).WithDetails(details)
		case resilience.StateHalfOpen:
			details["half_open_successes"] = m.HalfOpenSuccesses
			return Degraded("circuit half-open, probing dependency").WithDetails(details)
		default:
			return Healthy("circuit closed").WithDetails(details)
		}
	})
}

// BulkheadChecker derives health from bulkhead occupancy. The bulkhead is
// degraded once every slot is taken and work is queueing, since new calls
// will wait or be rejected.
func BulkheadChecker(pipeline string, bh *resilience.Bulkhead) Checker {
	return NewCheckerFunc(pipeline+".bulkhead", func(ctx context.Context) Result {
		m := bh.Metrics()
		details := map[string]any{
			"running":        m.Running,
			"queued":         m.Queued,
			"max_concurrent": m.MaxConcurrent,
			"total_rejected": m.TotalRejected,
		}

		if m.Running >= m.MaxConcurrent && m.Queued > 0 {
			return Degraded(
				fmt.Sprintf("bulkhead saturated, %d queued", m.Queued),
			).WithDetails(details)
		}
		return Healthy(
			fmt.Sprintf("%d of %d slots in use", m.Running, m.MaxConcurrent),
		).WithDetails(details)
	})
}

// PipelineChecker combines breaker and bulkhead health for one pipeline
// into a single checker. Either argument may be nil when the pipeline
// does not use that layer; the worse status wins.
func PipelineChecker(pipeline string, br *resilience.Breaker, bh *resilience.Bulkhead) Checker {
	var parts []Checker
	if br != nil {
		parts = append(parts, BreakerChecker(pipeline, br))
	}
	if bh != nil {
		parts = append(parts, BulkheadChecker(pipeline, bh))
	}

	return NewCheckerFunc(pipeline, func(ctx context.Context) Result {
		if len(parts) == 0 {
			return Healthy("no resilience layers configured")
		}

		worst := Healthy("all layers nominal")
		details := make(map[string]any, len(parts))
		for _, c := range parts {
			r := c.Check(ctx)
			details[c.Name()] = map[string]any{
				"status":  r.Status.String(),
				"message": r.Message,
			}
			if r.Status > worst.Status {
				worst = r
			}
		}
		worst.Details = details
		return worst
	})
}
