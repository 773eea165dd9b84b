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

	"github.com/phrazzld/postcraft-api/internal/generation"
)

const namespace = "postcraft"

// Registry owns every collector the service exports.
type Registry struct {
	reg *prometheus.Registry

	attempts      *prometheus.CounterVec
	retries       *prometheus.CounterVec
	retryDelay    *prometheus.HistogramVec
	calls         *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	callAttempts  *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

// Ensure Registry implements generation.Observer
var _ generation.Observer = (*Registry)(nil)

// New creates a Registry with Go runtime and process collectors installed.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "attempts_total",
			Help:      "Remote model calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "retries_total",
			Help:      "Retries scheduled by operation and failure classification.",
		}, []string{"operation", "classification"}),
		retryDelay: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "retry_delay_seconds",
			Help:      "Backoff delay before each retry.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"operation"}),
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "calls_total",
			Help:      "Finished generation calls by operation and result.",
		}, []string{"operation", "result"}),
		callDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "call_duration_seconds",
			Help:      "Wall time of a generation call including backoff.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9),
		}, []string{"operation"}),
		callAttempts: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "call_attempts",
			Help:      "Attempts made per generation call.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}, []string{"operation"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Gatherer returns the underlying registry for scraping or testing.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// AttemptFinished implements generation.Observer.
func (r *Registry) AttemptFinished(op generation.Operation, outcome string) {
	r.attempts.WithLabelValues(string(op), outcome).Inc()
}

// RetryScheduled implements generation.Observer.
func (r *Registry) RetryScheduled(op generation.Operation, class generation.Classification, delay time.Duration) {
	r.retries.WithLabelValues(string(op), class.String()).Inc()
	r.retryDelay.WithLabelValues(string(op)).Observe(delay.Seconds())
}

// CallFinished implements generation.Observer.
func (r *Registry) CallFinished(op generation.Operation, attempts int, duration time.Duration, err *generation.TerminalError) {
	result := "success"
	if err != nil {
		result = err.Classification.String()
	}
	r.calls.WithLabelValues(string(op), result).Inc()
	r.callDuration.WithLabelValues(string(op)).Observe(duration.Seconds())
	r.callAttempts.WithLabelValues(string(op)).Observe(float64(attempts))
}

// Middleware records request counts and latency keyed by the matched chi
// route pattern, which keeps label cardinality bounded.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.httpRequests.WithLabelValues(route, req.Method, strconv.Itoa(status)).Inc()
		r.httpDurations.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
	})
}
