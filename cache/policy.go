package cache

import "time"

// Policy configures caching behavior for last-known-good serving.
type Policy struct {
	// DefaultTTL is the freshness window when Set receives no explicit
	// TTL. Zero disables caching.
	DefaultTTL time.Duration

	// MaxTTL clamps explicit TTLs. Zero means no maximum.
	MaxTTL time.Duration

	// ServeStale allows a fallback to serve an entry whose TTL has
	// passed. Fresh entries are always served.
	ServeStale bool
}

// DefaultPolicy returns the default policy: one-minute freshness,
// one-hour clamp, stale serving on.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: time.Minute,
		MaxTTL:     time.Hour,
		ServeStale: true,
	}
}

// Enabled reports whether this policy caches anything at all.
func (p Policy) Enabled() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL applies the default and the clamp to an override TTL.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
