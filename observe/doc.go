// Package observe provides telemetry for resilience pipelines: tracing,
// metrics, and structured logging built on OpenTelemetry.
//
// An Observer owns the configured providers and hands out a Tracer, a
// Meter, and a Logger. Middleware ties the three together and plugs into
// a pipeline's call observer hook:
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "checkout",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer obs.Shutdown(ctx)
//
//	mw, err := observe.MiddlewareFromObserver(obs)
//	if err != nil {
//	    return err
//	}
//
//	p := resilience.NewPipeline("payments", charge,
//	    resilience.WithCallObserver[Receipt](mw.PipelineHook(observe.PipelineMeta{Name: "payments"})),
//	)
//
// Metric failures are attributed by error kind (circuit_open, bulkhead_full,
// bulkhead_timeout, max_retries, timeout, other) so dashboards can tell a
// tripped breaker from a slow downstream.
package observe
