package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devmarvs/jokebox"
	"github.com/devmarvs/jokebox/apperr"
	"github.com/devmarvs/jokebox/metrics"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsWithOptionsSkipPath(t *testing.T) {
	registry := metrics.New()
	app := jokebox.New(jokebox.WithLogger(discardLogger()))
	app.Use(MetricsWithOptions(MetricsOptions{Registry: registry, SkipPaths: []string{"/skip"}}))

	app.GET("/skip", func(ctx *jokebox.Context) error {
		return ctx.Text(http.StatusOK, "ok")
	})
	app.GET("/jokes/{jokeId}", func(ctx *jokebox.Context) error {
		return ctx.Text(http.StatusOK, "ok")
	})

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/skip", nil))
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jokes/1", nil))

	if got := promtest.ToFloat64(registry.Requests.WithLabelValues("GET", "/jokes/{jokeId}", "200")); got != 1 {
		t.Fatalf("expected 1 request on route pattern, got %v", got)
	}
	if got := promtest.CollectAndCount(registry.Requests); got != 1 {
		t.Fatalf("expected skipped path to be unrecorded, got %d series", got)
	}
}

func TestMetricsRecordsErrorStatus(t *testing.T) {
	registry := metrics.New()
	app := jokebox.New(jokebox.WithLogger(discardLogger()))
	app.Use(Metrics(registry))
	app.POST("/jokes/{jokeId}", func(*jokebox.Context) error {
		return apperr.Forbidden("no", nil)
	})

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/jokes/1", nil))

	if got := promtest.ToFloat64(registry.Requests.WithLabelValues("POST", "/jokes/{jokeId}", "403")); got != 1 {
		t.Fatalf("expected 403 to be recorded, got %v", got)
	}
}
