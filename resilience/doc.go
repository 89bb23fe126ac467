// Package resilience protects calls to unreliable remote operations.
//
// The package provides independent concurrency-control primitives and a
// composition root that layers them behind a single execution entry point:
//
//   - Circuit Breaker: trips after consecutive failures and short-circuits
//     calls while the downstream dependency recovers.
//
//   - Bulkhead: bounds the number of in-flight operations and queues excess
//     callers up to a bounded depth, in strict FIFO order.
//
//   - Retry: re-invokes failed operations with exponential backoff and
//     jitter, gated by a caller-supplied error classifier.
//
//   - Timeout: bounds each individual attempt against a deadline.
//
//   - Coalescer: collapses concurrent duplicate calls into a single
//     in-flight execution.
//
//   - Rate Limiter: token-bucket admission control for outbound call rate.
//
// # Pipeline
//
// Pipeline composes the primitives in a fixed order (bulkhead admission
// wraps the retry loop, which wraps the circuit breaker gate, which wraps
// the per-attempt timeout race) and aggregates call metrics:
//
//	p := resilience.NewPipeline("payments", chargeCard,
//	    resilience.WithBreaker[Receipt](resilience.BreakerConfig{
//	        FailureThreshold: 5,
//	        ResetTimeout:     30 * time.Second,
//	    }),
//	    resilience.WithBulkhead[Receipt](resilience.BulkheadConfig{
//	        MaxConcurrent: 10,
//	        MaxQueued:     50,
//	        QueueTimeout:  time.Second,
//	    }),
//	    resilience.WithRetry[Receipt](resilience.RetryConfig{
//	        MaxRetries:   3,
//	        InitialDelay: 100 * time.Millisecond,
//	    }),
//	    resilience.WithAttemptTimeout[Receipt](2*time.Second),
//	)
//
//	receipt, err := p.Execute(ctx)
//
// Each primitive can also be used on its own; see NewBreaker, NewBulkhead,
// NewRetry and ExecuteWithTimeout.
package resilience
