package observe

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/outrigger-io/outrigger/resilience"
)

// ErrorKind classifies a pipeline failure for metric attribution. It maps
// the resilience sentinels to stable label values; anything else is
// "other".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, resilience.ErrBulkheadFull):
		return "bulkhead_full"
	case errors.Is(err, resilience.ErrBulkheadTimeout):
		return "bulkhead_timeout"
	case errors.Is(err, resilience.ErrTimeout):
		return "timeout"
	case errors.Is(err, resilience.ErrMaxRetriesExceeded):
		return "max_retries"
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		return "rate_limited"
	default:
		return "other"
	}
}

// Metrics records execution metrics for pipelines.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records one pipeline call with duration and outcome.
	RecordExecution(ctx context.Context, meta PipelineMeta, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"pipeline.exec.total",
		metric.WithDescription("Total number of pipeline executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"pipeline.exec.errors",
		metric.WithDescription("Total number of failed pipeline executions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"pipeline.exec.duration_ms",
		metric.WithDescription("Pipeline execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordExecution records metrics for one pipeline call.
func (m *metricsImpl) RecordExecution(ctx context.Context, meta PipelineMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("pipeline.name", meta.Name),
	}
	if meta.Operation != "" {
		attrs = append(attrs, attribute.String("pipeline.operation", meta.Operation))
	}

	opt := metric.WithAttributes(attrs...)
	m.totalCount.Add(ctx, 1, opt)

	if err != nil {
		errAttrs := append(attrs, attribute.String("error.kind", ErrorKind(err)))
		m.errorCount.Add(ctx, 1, metric.WithAttributes(errAttrs...))
	}

	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordExecution(ctx context.Context, meta PipelineMeta, duration time.Duration, err error) {
}

// breakerStateValue maps a breaker state to its gauge value: 0 closed,
// 1 open, 2 half-open.
func breakerStateValue(s resilience.State) int64 {
	switch s {
	case resilience.StateOpen:
		return 1
	case resilience.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// RegisterBreakerGauge registers an observable gauge reporting the
// breaker's current state, labelled with the pipeline name. The returned
// registration should be unregistered when the breaker is discarded.
func RegisterBreakerGauge(meter metric.Meter, name string, br *resilience.Breaker) (metric.Registration, error) {
	gauge, err := meter.Int64ObservableGauge(
		"pipeline.breaker.state",
		metric.WithDescription("Circuit breaker state (0 closed, 1 open, 2 half-open)"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, breakerStateValue(br.State()),
			metric.WithAttributes(attribute.String("pipeline.name", name)))
		return nil
	}, gauge)
}

// RegisterBulkheadGauges registers observable gauges reporting the
// bulkhead's running and queued counts, labelled with the pipeline name.
func RegisterBulkheadGauges(meter metric.Meter, name string, bh *resilience.Bulkhead) (metric.Registration, error) {
	running, err := meter.Int64ObservableGauge(
		"pipeline.bulkhead.running",
		metric.WithDescription("Operations currently running in the bulkhead"),
	)
	if err != nil {
		return nil, err
	}

	queued, err := meter.Int64ObservableGauge(
		"pipeline.bulkhead.queued",
		metric.WithDescription("Tasks currently queued in the bulkhead"),
	)
	if err != nil {
		return nil, err
	}

	attrs := metric.WithAttributes(attribute.String("pipeline.name", name))
	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		m := bh.Metrics()
		o.ObserveInt64(running, int64(m.Running), attrs)
		o.ObserveInt64(queued, int64(m.Queued), attrs)
		return nil
	}, running, queued)
}
