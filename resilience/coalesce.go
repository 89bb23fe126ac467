package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Coalescer collapses concurrent duplicate calls into a single in-flight
// execution per key. Callers that arrive while an execution for the same
// key is running share its result instead of issuing their own call,
// which suppresses thundering herds against a recovering dependency.
type Coalescer[T any] struct {
	group singleflight.Group
}

// NewCoalescer creates a new coalescer.
func NewCoalescer[T any]() *Coalescer[T] {
	return &Coalescer[T]{}
}

// Do executes the operation for the given key, sharing any in-flight
// execution. The shared return reports whether the result was produced by
// another caller's execution.
func (c *Coalescer[T]) Do(ctx context.Context, key string, op Operation[T]) (T, bool, error) {
	v, err, shared := c.group.Do(key, func() (any, error) {
		return op(ctx)
	})
	if err != nil {
		var zero T
		return zero, shared, err
	}
	return v.(T), shared, nil
}

// Forget drops the in-flight record for a key, so the next Do issues a
// fresh execution instead of joining a stale one.
func (c *Coalescer[T]) Forget(key string) {
	c.group.Forget(key)
}
