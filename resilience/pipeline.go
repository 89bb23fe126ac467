package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Operation is the wrapped call a pipeline protects. The pipeline never
// inspects the result beyond the error.
type Operation[T any] func(ctx context.Context) (T, error)

// Fallback produces a substitute result when the protected call fails. It
// receives the error that would otherwise propagate to the caller.
type Fallback[T any] func(ctx context.Context, cause error) (T, error)

// Event describes one completed pipeline call, delivered to the observer
// hook after metrics are recorded.
type Event struct {
	Pipeline string
	Duration time.Duration
	Err      error
}

// PipelineMetrics is a snapshot of a pipeline's call counters. All counters
// are monotonically non-decreasing until ResetMetrics.
type PipelineMetrics struct {
	TotalCalls          int64
	SuccessfulCalls     int64
	FailedCalls         int64
	Timeouts            int64
	CircuitBreakerTrips int64
	BulkheadRejections  int64
	FallbackExecutions  int64

	// AverageLatency is the running mean over completed calls.
	AverageLatency time.Duration
}

// Pipeline routes every call through its configured layers in a fixed
// order: bulkhead admission wraps the retry loop, which wraps the circuit
// breaker gate, which wraps the per-attempt timeout race against the raw
// operation.
//
// The order is deliberate. The bulkhead gates concurrency before any
// retries happen, so a retrying call holds a single slot rather than one
// per attempt. The breaker sits inside the retry loop so every attempt
// re-checks breaker state. The timeout bounds each individual attempt, not
// the whole retry sequence.
//
// A Pipeline is the sole owner of its breaker, bulkhead and metrics;
// concurrent Execute calls on the same pipeline are safe.
type Pipeline[T any] struct {
	name     string
	op       Operation[T]
	fallback Fallback[T]
	breaker  *Breaker
	bulkhead *Bulkhead
	retry    *Retry
	timeout  *Timeout
	onCall   func(context.Context, Event)

	mu           sync.Mutex
	metrics      PipelineMetrics
	totalLatency time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption[T any] func(*Pipeline[T])

// NewPipeline creates a pipeline protecting the given operation. The set
// of active layers is fixed at construction time.
func NewPipeline[T any](name string, op Operation[T], opts ...PipelineOption[T]) *Pipeline[T] {
	p := &Pipeline[T]{
		name: name,
		op:   op,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithBreaker adds a circuit breaker to the pipeline.
func WithBreaker[T any](cfg BreakerConfig) PipelineOption[T] {
	return func(p *Pipeline[T]) {
		p.breaker = NewBreaker(cfg)
	}
}

// WithBulkhead adds a bulkhead to the pipeline.
func WithBulkhead[T any](cfg BulkheadConfig) PipelineOption[T] {
	return func(p *Pipeline[T]) {
		p.bulkhead = NewBulkhead(cfg)
	}
}

// WithRetry adds a retry layer to the pipeline. The composed pipeline
// always retries with exponential backoff, multiplier 2 and jitter on;
// cfg controls the attempt budget, delays and the RetryIf classifier.
func WithRetry[T any](cfg RetryConfig) PipelineOption[T] {
	return func(p *Pipeline[T]) {
		cfg.Strategy = BackoffExponential
		cfg.Multiplier = 2.0
		cfg.Jitter = true
		p.retry = NewRetry(cfg)
	}
}

// WithAttemptTimeout bounds each individual attempt against a deadline.
func WithAttemptTimeout[T any](d time.Duration) PipelineOption[T] {
	return func(p *Pipeline[T]) {
		p.timeout = NewTimeout(TimeoutConfig{Timeout: d})
	}
}

// WithFallback substitutes the fallback's result when the protected call
// fails. The failure is still recorded in the metrics before substitution.
func WithFallback[T any](fb Fallback[T]) PipelineOption[T] {
	return func(p *Pipeline[T]) {
		p.fallback = fb
	}
}

// WithCallObserver registers a hook invoked once per completed call, after
// metrics are recorded and before any fallback runs.
func WithCallObserver[T any](fn func(context.Context, Event)) PipelineOption[T] {
	return func(p *Pipeline[T]) {
		p.onCall = fn
	}
}

// Execute routes one call through the pipeline.
func (p *Pipeline[T]) Execute(ctx context.Context) (T, error) {
	start := time.Now()

	// The raw operation may still be running in a timeout straggler
	// goroutine when the call returns, so the captured result is
	// mutex-guarded.
	var (
		resMu  sync.Mutex
		result T
	)
	execute := func(ctx context.Context) error {
		v, err := p.op(ctx)
		if err != nil {
			return err
		}
		resMu.Lock()
		result = v
		resMu.Unlock()
		return nil
	}

	// Build the layer chain from the inside out.
	if p.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return p.timeout.Execute(ctx, inner)
		}
	}
	if p.breaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return p.breaker.Execute(ctx, inner)
		}
	}
	if p.retry != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return p.retry.Execute(ctx, inner)
		}
	}
	if p.bulkhead != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return p.bulkhead.Execute(ctx, inner)
		}
	}

	err := execute(ctx)
	duration := time.Since(start)
	p.record(duration, err)

	if p.onCall != nil {
		p.onCall(ctx, Event{Pipeline: p.name, Duration: duration, Err: err})
	}

	if err != nil {
		if p.fallback != nil {
			p.mu.Lock()
			p.metrics.FallbackExecutions++
			p.mu.Unlock()
			return p.fallback(ctx, err)
		}
		var zero T
		return zero, err
	}

	resMu.Lock()
	defer resMu.Unlock()
	return result, nil
}

// record updates the call counters. Error kinds are classified through
// errors.Is so wrapped causes (for example a timeout inside retry
// exhaustion) still count.
func (p *Pipeline[T]) record(duration time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.metrics.TotalCalls++
	p.totalLatency += duration

	if err == nil {
		p.metrics.SuccessfulCalls++
	} else {
		p.metrics.FailedCalls++
		switch {
		case errors.Is(err, ErrTimeout):
			p.metrics.Timeouts++
		case errors.Is(err, ErrCircuitOpen):
			p.metrics.CircuitBreakerTrips++
		case errors.Is(err, ErrBulkheadFull), errors.Is(err, ErrBulkheadTimeout):
			p.metrics.BulkheadRejections++
		}
	}

	completed := p.metrics.SuccessfulCalls + p.metrics.FailedCalls
	p.metrics.AverageLatency = p.totalLatency / time.Duration(completed)
}

// Name returns the pipeline identifier.
func (p *Pipeline[T]) Name() string {
	return p.name
}

// Metrics returns a snapshot of the call counters.
func (p *Pipeline[T]) Metrics() PipelineMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metrics
}

// ResetMetrics zeroes the call counters.
func (p *Pipeline[T]) ResetMetrics() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics = PipelineMetrics{}
	p.totalLatency = 0
}

// Breaker returns the underlying circuit breaker for inspection or
// administrative reset, or nil if none is configured.
func (p *Pipeline[T]) Breaker() *Breaker {
	return p.breaker
}

// Bulkhead returns the underlying bulkhead for inspection or draining, or
// nil if none is configured.
func (p *Pipeline[T]) Bulkhead() *Bulkhead {
	return p.bulkhead
}

// Retry returns the underlying retry handler, or nil if none is
// configured.
func (p *Pipeline[T]) Retry() *Retry {
	return p.retry
}
