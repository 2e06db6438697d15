package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cooksonapi_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cooksonapi_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cooksonapi_upstream_requests_total",
			Help: "Total number of outbound requests to external services.",
		},
		[]string{"service", "code"},
	)

	upstreamDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cooksonapi_upstream_duration_seconds",
			Help:    "Outbound request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	upstreamFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cooksonapi_upstream_failures_total",
			Help: "Outbound requests that failed at the transport level.",
		},
		[]string{"service"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(upstreamRequestsTotal)
	prometheus.MustRegister(upstreamDurationSeconds)
	prometheus.MustRegister(upstreamFailuresTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveUpstream records one completed outbound request.
func ObserveUpstream(service string, statusCode int, duration time.Duration) {
	upstreamRequestsTotal.WithLabelValues(service, strconv.Itoa(statusCode)).Inc()
	upstreamDurationSeconds.WithLabelValues(service).Observe(duration.Seconds())
}

// ObserveUpstreamFailure records an outbound request that never produced a
// response (connect error, timeout, open circuit breaker).
func ObserveUpstreamFailure(service string) {
	upstreamFailuresTotal.WithLabelValues(service).Inc()
}

// normalizeRoute collapses parameterized paths to a single label so that
// per-IP and per-coordinate requests cannot explode metric cardinality.
// Paths not served by the router are folded into "other" to keep scanner
// traffic out of the label set.
func normalizeRoute(path string) string {
	switch path {
	case "/healthz", "/readyz", "/metrics", "/",
		"/api/v1/astro/search", "/api/v1/astro/star-chart", "/api/v1/location":
		return path
	}
	switch {
	case strings.HasPrefix(path, "/api/v1/location/"):
		return "/api/v1/location/{ipAddress}"
	case strings.HasPrefix(path, "/api/v1/weather/"):
		return "/api/v1/weather/{lat}/{long}"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
