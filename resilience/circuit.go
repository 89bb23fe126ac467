package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is probing whether the dependency
	// recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	// Default: 5
	FailureThreshold int

	// ResetTimeout is how long an open circuit waits before admitting
	// probe calls. The timeout is a passive clock check performed at call
	// time, not an active timer.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxCalls bounds the probe calls admitted while half-open.
	// The circuit closes once this many probes succeed; any single probe
	// failure reopens it.
	// Default: 1
	HalfOpenMaxCalls int

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)

	// IsFailure determines if an error should count as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// Breaker implements the circuit breaker pattern.
//
// Breaker is safe for concurrent use. All state transitions and counter
// updates happen under a single mutex, so no two callers can observe an
// inconsistent probe count.
type Breaker struct {
	config BreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	halfOpenCalls int
	halfOpenOKs   int
	lastFailure   time.Time

	// pending holds state changes awaiting notification. Callbacks run
	// outside the mutex so they may safely call back into the breaker.
	pending []stateChange
}

type stateChange struct {
	from, to State
}

// NewBreaker creates a new circuit breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &Breaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker. It returns
// ErrCircuitOpen without invoking the operation when short-circuited.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := op(ctx)
	b.record(err)
	return err
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	s := b.stateLocked()
	changes := b.takeLocked()
	b.mu.Unlock()

	b.notify(changes)
	return s
}

// Reset forces the breaker to closed with zero counters, regardless of
// prior state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.transitionLocked(StateClosed)
	changes := b.takeLocked()
	b.mu.Unlock()

	b.notify(changes)
}

// admit decides whether a call may proceed, transitioning an expired open
// circuit to half-open first. Probe admission is an atomic
// increment-and-compare under the breaker mutex.
func (b *Breaker) admit() error {
	b.mu.Lock()

	var err error
	switch b.stateLocked() {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if b.halfOpenCalls >= b.config.HalfOpenMaxCalls {
			err = ErrCircuitOpen
		} else {
			b.halfOpenCalls++
		}
	}

	changes := b.takeLocked()
	b.mu.Unlock()

	b.notify(changes)
	return err
}

// record applies the outcome of an admitted call to the state machine.
func (b *Breaker) record(err error) {
	b.mu.Lock()

	failed := b.config.IsFailure(err)

	switch b.state {
	case StateClosed:
		if failed {
			b.failures++
			b.lastFailure = time.Now()
			if b.failures >= b.config.FailureThreshold {
				b.transitionLocked(StateOpen)
			}
		} else {
			b.failures = 0
		}

	case StateHalfOpen:
		if failed {
			// One failed probe reopens the circuit and restarts
			// the reset window.
			b.lastFailure = time.Now()
			b.transitionLocked(StateOpen)
		} else {
			b.halfOpenOKs++
			if b.halfOpenOKs >= b.config.HalfOpenMaxCalls {
				b.transitionLocked(StateClosed)
			}
		}
	}

	changes := b.takeLocked()
	b.mu.Unlock()

	b.notify(changes)
}

// stateLocked returns the effective state, moving an open circuit whose
// reset window elapsed into half-open. Callers must hold b.mu.
func (b *Breaker) stateLocked() State {
	if b.state == StateOpen && time.Since(b.lastFailure) >= b.config.ResetTimeout {
		b.transitionLocked(StateHalfOpen)
	}
	return b.state
}

// transitionLocked moves to the target state, resets the counters
// relevant to it, and queues the change notification. Callers must hold
// b.mu.
func (b *Breaker) transitionLocked(state State) {
	from := b.state
	b.state = state
	switch state {
	case StateClosed:
		b.failures = 0
		b.halfOpenCalls = 0
		b.halfOpenOKs = 0
	case StateHalfOpen:
		b.halfOpenCalls = 0
		b.halfOpenOKs = 0
	}

	if from != state && b.config.OnStateChange != nil {
		b.pending = append(b.pending, stateChange{from: from, to: state})
	}
}

// takeLocked drains the queued notifications. Callers must hold b.mu.
func (b *Breaker) takeLocked() []stateChange {
	changes := b.pending
	b.pending = nil
	return changes
}

func (b *Breaker) notify(changes []stateChange) {
	for _, c := range changes {
		b.config.OnStateChange(c.from, c.to)
	}
}

// BreakerMetrics contains circuit breaker statistics.
type BreakerMetrics struct {
	State             State
	Failures          int
	HalfOpenCalls     int
	HalfOpenSuccesses int
	LastFailure       time.Time
}

// Metrics returns a snapshot of the breaker state.
func (b *Breaker) Metrics() BreakerMetrics {
	b.mu.Lock()
	m := BreakerMetrics{
		State:             b.stateLocked(),
		Failures:          b.failures,
		HalfOpenCalls:     b.halfOpenCalls,
		HalfOpenSuccesses: b.halfOpenOKs,
		LastFailure:       b.lastFailure,
	}
	changes := b.takeLocked()
	b.mu.Unlock()

	b.notify(changes)
	return m
}
