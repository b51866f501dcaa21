// Package metrics holds the service's Prometheus collectors. A nil
// *Registry is a valid no-op.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jokebox"

// Registry owns a private Prometheus registry and the service collectors.
type Registry struct {
	registry *prometheus.Registry

	// Requests counts HTTP responses.
	// Labels: method, route (chi pattern), status
	Requests *prometheus.CounterVec

	// RequestDuration tracks handler latency.
	// Labels: method, route
	RequestDuration *prometheus.HistogramVec

	// AuthEvents counts login and registration attempts.
	// Labels: event=[login, register], outcome=[success, failure, conflict, error]
	AuthEvents *prometheus.CounterVec

	// AuthzDenials counts mutations refused by the ownership guard.
	// Labels: reason=[not_found, forbidden]
	AuthzDenials *prometheus.CounterVec

	// SessionInvalid counts cookies that failed verification.
	SessionInvalid prometheus.Counter
}

// New creates a Registry with Go runtime and process collectors included.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AuthEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Authentication attempts by event and outcome.",
		}, []string{"event", "outcome"}),
		AuthzDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_denials_total",
			Help:      "Mutations refused by the ownership guard.",
		}, []string{"reason"}),
		SessionInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_invalid_total",
			Help:      "Session cookies that failed verification.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.Requests,
		r.RequestDuration,
		r.AuthEvents,
		r.AuthzDenials,
		r.SessionInvalid,
	)
	return r
}

// ObserveRequest records one HTTP response.
func (r *Registry) ObserveRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// AuthEvent records an authentication outcome.
func (r *Registry) AuthEvent(event, outcome string) {
	if r == nil {
		return
	}
	r.AuthEvents.WithLabelValues(event, outcome).Inc()
}

// AuthzDenied records a refused mutation.
func (r *Registry) AuthzDenied(reason string) {
	if r == nil {
		return
	}
	r.AuthzDenials.WithLabelValues(reason).Inc()
}

// InvalidSession records a cookie that failed verification.
func (r *Registry) InvalidSession() {
	if r == nil {
		return
	}
	r.SessionInvalid.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
