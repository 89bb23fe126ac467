package observe

import (
	"context"
	"time"

	"github.com/outrigger-io/outrigger/resilience"
)

// ExecuteFunc is the signature for instrumented operations.
type ExecuteFunc func(ctx context.Context) (any, error)

// Middleware ties tracing, metrics, and logging together around pipeline
// executions.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
///   - Context: propagates context through tracing spans.
//   - Errors: errors from the wrapped function are recorded and propagated
//     unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability
// components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(meta PipelineMeta, fn ExecuteFunc) ExecuteFunc {
	logger := m.logger.WithPipeline(meta)

	return func(ctx context.Context) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		result, err := fn(ctx)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordExecution(ctx, meta, duration, err)

		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if err != nil {
			fields = append(fields,
				Field{Key: "error", Value: err.Error()},
				Field{Key: "error.kind", Value: ErrorKind(err)},
			)
			logger.Error(ctx, "pipeline execution failed", fields...)
		} else {
			logger.Info(ctx, "pipeline execution completed", fields...)
		}

		return result, err
	}
}

// PipelineHook returns a call observer suitable for
// resilience.WithCallObserver. Unlike Wrap it does not trace, since the
// pipeline reports outcomes after the fact; it records metrics and logs
// per completed call.
func (m *Middleware) PipelineHook(meta PipelineMeta) func(context.Context, resilience.Event) {
	logger := m.logger.WithPipeline(meta)

	return func(ctx context.Context, ev resilience.Event) {
		m.metrics.RecordExecution(ctx, meta, ev.Duration, ev.Err)

		fields := []Field{
			{Key: "duration_ms", Value: float64(ev.Duration.Milliseconds())},
		}
		if ev.Err != nil {
			fields = append(fields,
				Field{Key: "error", Value: ev.Err.Error()},
				Field{Key: "error.kind", Value: ErrorKind(ev.Err)},
			)
			logger.Error(ctx, "pipeline call failed", fields...)
		} else {
			logger.Debug(ctx, "pipeline call completed", fields...)
		}
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
