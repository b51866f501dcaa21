package middleware

import (
	"net/http"

	"github.com/devmarvs/jokebox"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/devmarvs/jokebox/middleware"

// Trace records one server span per request.
func Trace(provider trace.TracerProvider) jokebox.Middleware {
	return TraceWithOptions(DefaultTraceOptions(provider))
}

// TraceOptions configures tracing middleware.
type TraceOptions struct {
	// Provider defaults to the global tracer provider.
	Provider trace.TracerProvider
	// Propagator defaults to the global text map propagator.
	Propagator propagation.TextMapPropagator
	SkipPaths  []string
}

// DefaultTraceOptions returns default tracing options.
func DefaultTraceOptions(provider trace.TracerProvider) TraceOptions {
	return TraceOptions{
		Provider:  provider,
		SkipPaths: []string{"/metrics", "/health", "/ready"},
	}
}

// TraceWithOptions records request spans with options.
func TraceWithOptions(options TraceOptions) jokebox.Middleware {
	provider := options.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	propagator := options.Propagator
	if propagator == nil {
		propagator = otel.GetTextMapPropagator()
	}
	tracer := provider.Tracer(tracerName)

	return func(next jokebox.Handler) jokebox.Handler {
		return func(ctx *jokebox.Context) error {
			if shouldSkipPath(ctx.Request.URL.Path, options.SkipPaths) {
				return next(ctx)
			}

			route := ctx.Route()
			if route == "" {
				route = "unmatched"
			}

			parent := propagator.Extract(ctx.Request.Context(), propagation.HeaderCarrier(ctx.Request.Header))
			spanCtx, span := tracer.Start(parent, ctx.Request.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", ctx.Request.Method),
					attribute.String("http.route", route),
					attribute.String("url.path", ctx.Request.URL.Path),
				),
			)
			defer span.End()

			recorder := newResponseRecorder(ctx.ResponseWriter)
			ctx.ResponseWriter = recorder
			ctx.Request = ctx.Request.WithContext(spanCtx)

			err := next(ctx)

			status := statusFor(recorder, err)
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
				if err != nil {
					span.RecordError(err)
				}
			}
			return err
		}
	}
}
