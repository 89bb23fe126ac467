package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Store. Expired entries are retained so a
// fallback can still serve them; Purge discards them for good.
type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[string]memEntry[T]
}

type memEntry[T any] struct {
	value     T
	expiresAt time.Time
	storedAt  time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{entries: make(map[string]memEntry[T])}
}

// Get retrieves a fresh value. Expired entries report a miss but stay
// available to GetStale.
func (m *Memory[T]) Get(_ context.Context, key string) (T, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		var zero T
		return zero, false
	}
	return entry.value, true
}

// GetStale retrieves a value regardless of expiry. The second result is
// whether the entry exists at all, the third whether it is still fresh.
func (m *Memory[T]) GetStale(_ context.Context, key string) (T, bool, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		var zero T
		return zero, false, false
	}
	return entry.value, true, time.Now().Before(entry.expiresAt)
}

// Set stores a value with the given TTL. TTL<=0 stores nothing.
func (m *Memory[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	now := time.Now()
	m.mu.Lock()
	m.entries[key] = memEntry[T]{
		value:     value,
		expiresAt: now.Add(ttl),
		storedAt:  now,
	}
	m.mu.Unlock()
	return nil
}

// Delete removes a value. Idempotent.
func (m *Memory[T]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Purge discards entries that expired before the given age cutoff.
// A zero maxAge discards every expired entry. Returns the number of
// entries removed.
func (m *Memory[T]) Purge(maxAge time.Duration) int {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.entries {
		if now.Before(entry.expiresAt) {
			continue
		}
		if maxAge > 0 && now.Sub(entry.storedAt) < maxAge {
			continue
		}
		delete(m.entries, key)
		removed++
	}
	return removed
}

// Len reports the number of entries, including expired ones.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var _ Store[any] = (*Memory[any])(nil)
