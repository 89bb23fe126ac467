package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/outrigger-io/outrigger/resilience"
)

func TestPipelineMeta_SpanName(t *testing.T) {
	tests := []struct {
		meta PipelineMeta
		want string
	}{
		{PipelineMeta{Name: "payments"}, "pipeline.exec.payments"},
		{PipelineMeta{Name: "payments", Operation: "charge"}, "pipeline.exec.payments.charge"},
		{PipelineMeta{Name: "search", Operation: "query", Version: "1.2.0"}, "pipeline.exec.search.query"},
	}

	for _, tt := range tests {
		if got := tt.meta.SpanName(); got != tt.want {
			t.Errorf("SpanName() = %q, want %q", got, tt.want)
		}
	}
}

func newRecordingTracer(t *testing.T) (Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return newTracer(tp.Tracer("test")), recorder
}

func TestTracer_SuccessSpan(t *testing.T) {
	tr, recorder := newRecordingTracer(t)

	meta := PipelineMeta{Name: "payments", Operation: "charge"}
	_, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}

	got := spans[0]
	if got.Name() != "pipeline.exec.payments.charge" {
		t.Errorf("span name = %q, want pipeline.exec.payments.charge", got.Name())
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status().Code)
	}
}

func TestTracer_ErrorSpan(t *testing.T) {
	tr, recorder := newRecordingTracer(t)

	meta := PipelineMeta{Name: "payments"}
	_, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, resilience.ErrCircuitOpen)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}

	got := spans[0]
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status().Code)
	}

	var kind string
	for _, attr := range got.Attributes() {
		if string(attr.Key) == "pipeline.error_kind" {
			kind = attr.Value.AsString()
		}
	}
	if kind != "circuit_open" {
		t.Errorf("pipeline.error_kind = %q, want circuit_open", kind)
	}
	if len(got.Events()) == 0 {
		t.Error("expected a recorded error event")
	}
}

func TestNoopTracer(t *testing.T) {
	tr := newNoopTracer()

	ctx, span := tr.StartSpan(context.Background(), PipelineMeta{Name: "x"})
	if ctx == nil {
		t.Fatal("StartSpan returned nil context")
	}
	if span.IsRecording() {
		t.Error("noop span should not be recording")
	}

	// Must not panic with or without an error.
	tr.EndSpan(span, errors.New("boom"))
}
