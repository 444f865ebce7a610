package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTest(t *testing.T) (trace.Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp.Tracer("test"), recorder
}

func TestGetTracer_DisabledReturnsNoopTracer(t *testing.T) {
	tracer := GetTracer(DefaultSettings())
	_, span := tracer.Start(context.Background(), "op")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("expected a noop tracer to produce an invalid span context")
	}
}

func TestGetTracer_NilSettingsReturnsNoopTracer(t *testing.T) {
	tracer := GetTracer(nil)
	_, span := tracer.Start(context.Background(), "op")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("expected a noop tracer to produce an invalid span context")
	}
}

func TestGetTracer_EnabledWithCustomTracerUsesIt(t *testing.T) {
	custom, _ := setupTest(t)

	settings := DefaultSettings().WithEnabled(true).WithTracer(custom)
	tracer := GetTracer(settings)

	if tracer != custom {
		t.Error("expected GetTracer to return the custom tracer unchanged")
	}
}

func TestRecordSpan_SuccessEndsSpanAndReturnsResult(t *testing.T) {
	tracer, recorder := setupTest(t)

	result, err := RecordSpan(context.Background(), tracer, SpanOptions{
		Name:        "gateway.request",
		EndWhenDone: true,
	}, func(ctx context.Context, span trace.Span) (string, error) {
		span.SetAttributes(attribute.String("gateway.model.id", "gpt-5"))
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected result 'ok', got %q", result)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	if spans[0].Name() != "gateway.request" {
		t.Errorf("expected span name 'gateway.request', got %q", spans[0].Name())
	}
}

func TestRecordSpan_ErrorIsRecordedAndSpanStillEnds(t *testing.T) {
	tracer, recorder := setupTest(t)

	boom := errors.New("boom")
	_, err := RecordSpan(context.Background(), tracer, SpanOptions{Name: "op"},
		func(ctx context.Context, span trace.Span) (int, error) {
			return 0, boom
		})

	if !errors.Is(err, boom) {
		t.Fatalf("expected the original error to propagate, got %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected span status Error, got %v", spans[0].Status().Code)
	}
}

func TestGetBaseAttributes_OmitsSensitiveHeaders(t *testing.T) {
	attrs := GetBaseAttributes("responses", "gpt-5", DefaultSettings(), map[string]string{
		"Authorization": "secret",
		"x-api-key":     "secret",
		"X-Request-Id":  "req_1",
	})

	keys := map[string]bool{}
	for _, a := range attrs {
		keys[string(a.Key)] = true
	}
	if !keys["gateway.upstream.dialect"] || !keys["gateway.model.id"] {
		t.Error("expected dialect and model.id attributes to be present")
	}
	if !keys["gateway.request.headers.X-Request-Id"] {
		t.Error("expected non-sensitive header to be recorded")
	}
	if keys["gateway.request.headers.Authorization"] || keys["gateway.request.headers.x-api-key"] {
		t.Error("expected Authorization/x-api-key headers to be omitted")
	}
}

func TestGetBaseAttributes_IncludesFunctionIDAndMetadata(t *testing.T) {
	settings := DefaultSettings().WithFunctionID("fn-1").WithMetadata(map[string]attribute.Value{
		"env": attribute.StringValue("prod"),
	})

	attrs := GetBaseAttributes("chatcompletions", "claude-sonnet-4", settings, nil)

	found := map[string]attribute.Value{}
	for _, a := range attrs {
		found[string(a.Key)] = a.Value
	}
	if got := found["gateway.telemetry.functionId"]; got.AsString() != "fn-1" {
		t.Errorf("expected functionId fn-1, got %q", got.AsString())
	}
	if got := found["gateway.telemetry.metadata.env"]; got.AsString() != "prod" {
		t.Errorf("expected metadata.env prod, got %q", got.AsString())
	}
}

func TestAddSettingsAttributes_SetsTypedAttributesOnSpan(t *testing.T) {
	tracer, recorder := setupTest(t)
	_, span := tracer.Start(context.Background(), "op")

	AddSettingsAttributes(span, "gateway.settings", map[string]interface{}{
		"temperature": 0.5,
		"max_tokens":  100,
		"stream":      true,
		"model":       "gpt-5",
	})
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	keys := map[string]bool{}
	for _, a := range spans[0].Attributes() {
		keys[string(a.Key)] = true
	}
	for _, want := range []string{"gateway.settings.temperature", "gateway.settings.max_tokens", "gateway.settings.stream", "gateway.settings.model"} {
		if !keys[want] {
			t.Errorf("expected attribute %s to be set", want)
		}
	}
}
