package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devmarvs/jokebox"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceWithOptionsSkipPath(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	app := jokebox.New(jokebox.WithLogger(discardLogger()))
	app.Use(TraceWithOptions(TraceOptions{Provider: provider, SkipPaths: []string{"/skip"}}))

	app.GET("/skip", func(ctx *jokebox.Context) error {
		return ctx.Text(http.StatusOK, "ok")
	})
	app.GET("/jokes/{jokeId}", func(ctx *jokebox.Context) error {
		if !trace.SpanContextFromContext(ctx.Request.Context()).IsValid() {
			t.Errorf("expected span in request context")
		}
		return ctx.Text(http.StatusOK, "ok")
	})

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/skip", nil))
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jokes/7", nil))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "GET /jokes/{jokeId}" {
		t.Fatalf("unexpected span name %q", span.Name())
	}
	if span.SpanKind() != trace.SpanKindServer {
		t.Fatalf("expected server span, got %v", span.SpanKind())
	}

	var status int64
	for _, attr := range span.Attributes() {
		if attr.Key == attribute.Key("http.response.status_code") {
			status = attr.Value.AsInt64()
		}
	}
	if status != http.StatusOK {
		t.Fatalf("expected status attribute 200, got %d", status)
	}
}
