// Package health exposes the runtime state of resilience pipelines as
// health checks.
//
// A Checker reports the health of one component. The package ships
// checkers that derive health from resilience primitives: an open
// circuit breaker marks its pipeline unhealthy, a saturated bulkhead
// marks it degraded. A Registry fans out all registered checkers
// concurrently and folds their results into an overall status, and the
// HTTP handlers expose liveness, readiness, and detailed endpoints for
// orchestrators.
//
// Example:
//
//	reg := health.NewRegistry(health.RegistryConfig{Timeout: 5 * time.Second})
//	reg.Register(health.BreakerChecker("payments", breaker))
//	reg.Register(health.BulkheadChecker("payments", bulkhead))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, reg)
package health
