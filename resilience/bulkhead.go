package resilience

import (
	"context"
	"sync"
	"time"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of concurrently running
	// operations.
	// Default: 10
	MaxConcurrent int

	// MaxQueued is the maximum number of callers allowed to wait for a
	// slot. Admission beyond this fails immediately with ErrBulkheadFull.
	// Default: 0 (no queue, reject when saturated)
	MaxQueued int

	// QueueTimeout is the maximum time a caller may wait in the queue
	// before failing with ErrBulkheadTimeout.
	// Default: 1 second (only relevant when MaxQueued > 0)
	QueueTimeout time.Duration
}

// waiter is one queued admission request. The grant channel is buffered so
// the releasing goroutine never blocks handing over a slot or a rejection.
type waiter struct {
	grant    chan error
	enqueued time.Time
}

// Bulkhead bounds concurrent operations and queues excess callers up to a
// bounded depth, in strict FIFO order.
//
// Bulkhead is safe for concurrent use. The running count and the queue are
// guarded by a single mutex; a waiter is either in the queue or has been
// resolved, never both.
type Bulkhead struct {
	config BulkheadConfig

	mu            sync.Mutex
	running       int
	maxRunning    int
	queue         []*waiter
	totalExecuted int64
	totalRejected int64
}

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	if config.MaxQueued < 0 {
		config.MaxQueued = 0
	}
	if config.QueueTimeout <= 0 {
		config.QueueTimeout = time.Second
	}

	return &Bulkhead{config: config}
}

// Acquire claims a running slot, waiting in the queue if necessary.
// It returns ErrBulkheadFull when the queue is saturated, ErrBulkheadTimeout
// when the queue wait exceeds QueueTimeout, or ctx.Err() if the context is
// cancelled while waiting.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	b.mu.Lock()

	if b.running < b.config.MaxConcurrent {
		b.running++
		if b.running > b.maxRunning {
			b.maxRunning = b.running
		}
		b.mu.Unlock()
		return nil
	}

	if len(b.queue) >= b.config.MaxQueued {
		b.totalRejected++
		b.mu.Unlock()
		return ErrBulkheadFull
	}

	w := &waiter{
		grant:    make(chan error, 1),
		enqueued: time.Now(),
	}
	b.queue = append(b.queue, w)
	b.mu.Unlock()

	timer := time.NewTimer(b.config.QueueTimeout)
	defer timer.Stop()

	select {
	case err := <-w.grant:
		return err
	case <-timer.C:
		return b.abandon(w, ErrBulkheadTimeout)
	case <-ctx.Done():
		return b.abandon(w, ctx.Err())
	}
}

// abandon removes a waiter that gave up. A grant delivered concurrently
// wins: the waiter keeps the slot it was handed and proceeds.
func (b *Bulkhead) abandon(w *waiter, cause error) error {
	b.mu.Lock()
	for i, queued := range b.queue {
		if queued == w {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			b.totalRejected++
			b.mu.Unlock()
			return cause
		}
	}
	b.mu.Unlock()

	// Already resolved: the grant (or rejection) is sitting in the
	// buffered channel.
	return <-w.grant
}

// Release returns a running slot and hands it to the oldest viable queued
// waiter. Waiters whose accumulated wait already exceeds QueueTimeout are
// failed and skipped.
func (b *Bulkhead) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.running--
	b.totalExecuted++

	for len(b.queue) > 0 {
		w := b.queue[0]
		b.queue = b.queue[1:]

		if time.Since(w.enqueued) > b.config.QueueTimeout {
			b.totalRejected++
			w.grant <- ErrBulkheadTimeout
			continue
		}

		b.running++
		if b.running > b.maxRunning {
			b.maxRunning = b.running
		}
		w.grant <- nil
		return
	}
}

// Execute runs the operation within the bulkhead.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()

	return op(ctx)
}

// Drain fails every queued task with ErrBulkheadFull and empties the queue.
// Running operations are not touched.
func (b *Bulkhead) Drain() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range b.queue {
		b.totalRejected++
		w.grant <- ErrBulkheadFull
	}
	b.queue = nil
}

// BulkheadMetrics contains bulkhead statistics.
type BulkheadMetrics struct {
	Running       int
	MaxRunning    int
	Queued        int
	MaxConcurrent int
	MaxQueued     int
	TotalExecuted int64
	TotalRejected int64
}

// Metrics returns a snapshot of the bulkhead state.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadMetrics{
		Running:       b.running,
		MaxRunning:    b.maxRunning,
		Queued:        len(b.queue),
		MaxConcurrent: b.config.MaxConcurrent,
		MaxQueued:     b.config.MaxQueued,
		TotalExecuted: b.totalExecuted,
		TotalRejected: b.totalRejected,
	}
}
