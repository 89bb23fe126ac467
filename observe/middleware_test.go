package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/outrigger-io/outrigger/resilience"
)

// testMiddleware builds a Middleware with in-memory telemetry backends.
func testMiddleware(t *testing.T) (*Middleware, *tracetest.SpanRecorder, *sdkmetric.ManualReader, *bytes.Buffer) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("newMetrics() error = %v", err)
	}

	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	return NewMiddleware(newTracer(tp.Tracer("test")), m, logger), recorder, reader, &buf
}

func TestMiddleware_WrapSuccess(t *testing.T) {
	mw, recorder, reader, buf := testMiddleware(t)

	meta := PipelineMeta{Name: "payments", Operation: "charge"}
	fn := mw.Wrap(meta, func(ctx context.Context) (any, error) {
		return "ok", nil
	})

	result, err := fn(context.Background())
	if err != nil {
		t.Fatalf("wrapped fn error = %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %v, want ok", result)
	}

	if spans := recorder.Ended(); len(spans) != 1 {
		t.Errorf("recorded %d spans, want 1", len(spans))
	}
	if n := sumInt64(t, mustMetric(t, reader, "pipeline.exec.total")); n != 1 {
		t.Errorf("pipeline.exec.total = %d, want 1", n)
	}

	lines := parseLogLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("logged %d lines, want 1", len(lines))
	}
	if lines[0]["msg"] != "pipeline execution completed" {
		t.Errorf("log message = %v", lines[0]["msg"])
	}
	if lines[0]["pipeline.name"] != "payments" {
		t.Errorf("pipeline.name = %v, want payments", lines[0]["pipeline.name"])
	}
}

func TestMiddleware_WrapError(t *testing.T) {
	mw, recorder, reader, buf := testMiddleware(t)

	meta := PipelineMeta{Name: "payments"}
	wantErr := errors.New("downstream failure")
	fn := mw.Wrap(meta, func(ctx context.Context) (any, error) {
		return nil, wantErr
	})

	_, err := fn(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("wrapped fn error = %v, want %v", err, wantErr)
	}

	if spans := recorder.Ended(); len(spans) != 1 {
		t.Errorf("recorded %d spans, want 1", len(spans))
	}
	if n := sumInt64(t, mustMetric(t, reader, "pipeline.exec.errors")); n != 1 {
		t.Errorf("pipeline.exec.errors = %d, want 1", n)
	}

	lines := parseLogLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("logged %d lines, want 1", len(lines))
	}
	if lines[0]["level"] != "error" {
		t.Errorf("log level = %v, want error", lines[0]["level"])
	}
	if lines[0]["error.kind"] != "other" {
		t.Errorf("error.kind = %v, want other", lines[0]["error.kind"])
	}
}

func TestMiddleware_PipelineHook(t *testing.T) {
	mw, _, reader, buf := testMiddleware(t)

	meta := PipelineMeta{Name: "search", Operation: "query"}
	hook := mw.PipelineHook(meta)

	hook(context.Background(), resilience.Event{
		Pipeline: "search",
		Duration: 3 * time.Millisecond,
		Err:      nil,
	})
	hook(context.Background(), resilience.Event{
		Pipeline: "search",
		Duration: 7 * time.Millisecond,
		Err:      resilience.ErrBulkheadFull,
	})

	if n := sumInt64(t, mustMetric(t, reader, "pipeline.exec.total")); n != 2 {
		t.Errorf("pipeline.exec.total = %d, want 2", n)
	}
	if n := sumInt64(t, mustMetric(t, reader, "pipeline.exec.errors")); n != 1 {
		t.Errorf("pipeline.exec.errors = %d, want 1", n)
	}

	lines := parseLogLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want 2", len(lines))
	}
	if lines[0]["level"] != "debug" {
		t.Errorf("first log level = %v, want debug", lines[0]["level"])
	}
	if lines[1]["error.kind"] != "bulkhead_full" {
		t.Errorf("error.kind = %v, want bulkhead_full", lines[1]["error.kind"])
	}
}

func TestMiddleware_HookDrivesPipeline(t *testing.T) {
	mw, _, reader, _ := testMiddleware(t)

	meta := PipelineMeta{Name: "orders"}
	p := resilience.NewPipeline("orders",
		func(ctx context.Context) (string, error) { return "done", nil },
		resilience.WithCallObserver[string](mw.PipelineHook(meta)),
	)

	_, _ = p.Execute(context.Background())

	if n := sumInt64(t, mustMetric(t, reader, "pipeline.exec.total")); n != 1 {
		t.Errorf("pipeline.exec.total = %d, want 1", n)
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("MiddlewareFromObserver(nil) error = %v, want ErrNilObserver", err)
	}

	obs, err := NewObserver(context.Background(), Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}

	fn := mw.Wrap(PipelineMeta{Name: "t"}, func(ctx context.Context) (any, error) {
		return nil, nil
	})
	if _, err := fn(context.Background()); err != nil {
		t.Errorf("wrapped fn error = %v", err)
	}
}

// mustMetric collects from the reader and returns the named metric.
func mustMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Metrics {
	t.Helper()

	got := collect(t, reader)
	m, ok := got[name]
	if !ok {
		t.Fatalf("%s not recorded", name)
	}
	return m
}
