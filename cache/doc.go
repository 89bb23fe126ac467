// Package cache provides last-known-good result caching for resilience
// pipelines.
//
// The classic companion to a fallback: successful results are stored
// under a deterministic key, and when the guarded operation fails, the
// most recent good value is served instead (optionally even after its
// TTL expired). LastGood wires the pattern directly into
// resilience.WithFallback.
//
// Example:
//
//	store := cache.NewMemory[Quote]()
//	lg := cache.NewLastGood[Quote](store, cache.Policy{DefaultTTL: time.Minute, ServeStale: true})
//
//	p := resilience.NewPipeline("quotes", lg.Wrap("EURUSD", fetchQuote),
//		resilience.WithFallback[Quote](lg.Fallback("EURUSD")),
//	)
package cache
