// Package metrics exports Prometheus metrics for the HTTP layer and for the
// auth, upload, rate limit and orphan sweep outcomes reported by the services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests no route matched, to keep path cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics holds every collector. Each instance owns its registry, so tests
// can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	AuthAttemptsTotal *prometheus.CounterVec

	UploadsTotal        *prometheus.CounterVec
	UploadedBytesTotal  prometheus.Counter
	FileDeletionsTotal  *prometheus.CounterVec
	RateLimitedTotal    prometheus.Counter
	OrphansRemovedTotal prometheus.Counter
}

// New registers the collectors under namespace, together with the Go runtime
// and process collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		AuthAttemptsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Register and login attempts by outcome",
			},
			[]string{"operation", "outcome"},
		),
		UploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "file_uploads_total",
				Help:      "Upload requests by outcome",
			},
			[]string{"outcome"},
		),
		UploadedBytesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "file_uploaded_bytes_total",
				Help:      "Bytes stored by successful uploads",
			},
		),
		FileDeletionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "file_deletions_total",
				Help:      "File delete requests by outcome",
			},
			[]string{"outcome"},
		),
		RateLimitedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_requests_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
		OrphansRemovedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orphan_blobs_removed_total",
				Help:      "Blobs without metadata removed by the sweeper",
			},
		),
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency labelled by the chi route
// pattern, which is only known once routing finished.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}

// AuthAttempt implements auth.Observer.
func (m *Metrics) AuthAttempt(operation, outcome string) {
	m.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

// UploadObserved implements files.Observer.
func (m *Metrics) UploadObserved(outcome string, bytes int64) {
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		m.UploadedBytesTotal.Add(float64(bytes))
	}
}

// DeleteObserved implements files.Observer.
func (m *Metrics) DeleteObserved(outcome string) {
	m.FileDeletionsTotal.WithLabelValues(outcome).Inc()
}

// RateLimited implements ratelimit.Observer. The path is not used as a label.
func (m *Metrics) RateLimited(string) {
	m.RateLimitedTotal.Inc()
}

// OrphansRemoved implements background.Observer.
func (m *Metrics) OrphansRemoved(n int) {
	if n > 0 {
		m.OrphansRemovedTotal.Add(float64(n))
	}
}
