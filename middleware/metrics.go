package middleware

import (
	"time"

	"github.com/devmarvs/jokebox"
	"github.com/devmarvs/jokebox/metrics"
)

// Metrics records request counts and latency into the registry.
func Metrics(registry *metrics.Registry) jokebox.Middleware {
	return MetricsWithOptions(MetricsOptions{Registry: registry, SkipPaths: []string{"/metrics"}})
}

// MetricsOptions configures metrics middleware.
type MetricsOptions struct {
	Registry  *metrics.Registry
	SkipPaths []string
}

// MetricsWithOptions records request metrics with options.
func MetricsWithOptions(options MetricsOptions) jokebox.Middleware {
	return func(next jokebox.Handler) jokebox.Handler {
		return func(ctx *jokebox.Context) error {
			if options.Registry == nil || shouldSkipPath(ctx.Request.URL.Path, options.SkipPaths) {
				return next(ctx)
			}

			start := time.Now()
			recorder := newResponseRecorder(ctx.ResponseWriter)
			ctx.ResponseWriter = recorder

			err := next(ctx)

			options.Registry.ObserveRequest(ctx.Request.Method, ctx.Route(), statusFor(recorder, err), time.Since(start))
			return err
		}
	}
}
