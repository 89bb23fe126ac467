package cache

import (
	"context"
	"fmt"

	"github.com/outrigger-io/outrigger/resilience"
)

// LastGood serves the most recent successful result of an operation
// when the operation fails. Successes refresh the store; failures fall
// back to whatever the store holds, subject to the policy's staleness
// rule.
type LastGood[T any] struct {
	store  Store[T]
	policy Policy
}

// NewLastGood wraps a store with last-known-good semantics. A zero
// policy gets DefaultPolicy.
func NewLastGood[T any](store Store[T], policy Policy) *LastGood[T] {
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	return &LastGood[T]{store: store, policy: policy}
}

// Wrap returns an operation that refreshes the cached value under key
// on every success. Failures pass through unchanged; pair with
// Fallback to serve the cached value instead.
func (lg *LastGood[T]) Wrap(key string, op resilience.Operation[T]) resilience.Operation[T] {
	return func(ctx context.Context) (T, error) {
		result, err := op(ctx)
		if err == nil && lg.policy.Enabled() {
			_ = lg.store.Set(ctx, key, result, lg.policy.EffectiveTTL(0))
		}
		return result, err
	}
}

// Fallback returns a resilience fallback that serves the cached value
// under key. Fresh entries are always served; expired entries only when
// the policy allows stale serving. With nothing usable cached, the
// original failure is returned wrapped around ErrNoEntry.
func (lg *LastGood[T]) Fallback(key string) resilience.Fallback[T] {
	return func(ctx context.Context, cause error) (T, error) {
		value, ok, fresh := lg.store.GetStale(ctx, key)
		if ok && (fresh || lg.policy.ServeStale) {
			return value, nil
		}

		var zero T
		return zero, fmt.Errorf("%w (operation failed: %w)", ErrNoEntry, cause)
	}
}

// Invalidate drops the cached value under key.
func (lg *LastGood[T]) Invalidate(ctx context.Context, key string) error {
	return lg.store.Delete(ctx, key)
}
