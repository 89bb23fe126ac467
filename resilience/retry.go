package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// BackoffStrategy defines how delays increase between retries.
type BackoffStrategy int

const (
	// BackoffExponential doubles the delay each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear increases delay linearly.
	BackoffLinear
	// BackoffConstant uses the same delay for all retries.
	BackoffConstant
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxRetries is the maximum number of retries after the initial
	// attempt, so an operation is invoked at most MaxRetries+1 times.
	// Default: 3
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy is the backoff strategy.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter scales each delay by a uniform random factor in [0.5, 1.0]
	// to avoid synchronized retry storms.
	// Default: false
	Jitter bool

	// RetryIf classifies which errors are worth retrying. Errors it
	// rejects are returned to the caller immediately, unwrapped.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(retry int, err error, delay time.Duration)
}

// RetryStats describes the most recent Execute call.
type RetryStats struct {
	// Attempts is the number of operation invocations, including the
	// initial one.
	Attempts int

	// LastErr is the last failure observed, or nil if the call succeeded.
	LastErr error
}

// Retry implements retry with backoff.
//
// Retry is safe for concurrent use; the per-call attempt counter lives on
// the stack and only the diagnostic snapshot is shared.
type Retry struct {
	config RetryConfig

	mu   sync.Mutex
	last RetryStats
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	return &Retry{config: config}
}

// Execute runs the operation, retrying failures the classifier accepts.
// Exhaustion returns a *MaxRetriesError wrapping the final failure;
// non-retryable errors are returned as-is without further attempts.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var stats RetryStats

	defer func() {
		r.mu.Lock()
		r.last = stats
		r.mu.Unlock()
	}()

	for retry := 0; ; retry++ {
		err := op(ctx)
		stats.Attempts++

		if err == nil {
			stats.LastErr = nil
			return nil
		}
		stats.LastErr = err

		if !r.config.RetryIf(err) {
			return err
		}

		if retry >= r.config.MaxRetries {
			return &MaxRetriesError{Retries: retry, LastErr: err}
		}

		delay := r.delay(retry + 1)

		if r.config.OnRetry != nil {
			r.config.OnRetry(retry+1, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// delay computes the backoff before the given retry (1-based), capped at
// MaxDelay and optionally jittered.
func (r *Retry) delay(retry int) time.Duration {
	var delay time.Duration

	switch r.config.Strategy {
	case BackoffConstant:
		delay = r.config.InitialDelay

	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(retry)

	case BackoffExponential:
		factor := math.Pow(r.config.Multiplier, float64(retry-1))
		delay = time.Duration(float64(r.config.InitialDelay) * factor)
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter && delay > 0 {
		// Uniform factor in [0.5, 1.0).
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay = time.Duration(float64(delay) * (0.5 + rand.Float64()/2))
	}

	return delay
}

// Stats returns diagnostics from the most recent Execute call.
func (r *Retry) Stats() RetryStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
