package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "savor",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savor",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "savor",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	policyDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savor",
			Subsystem: "policy",
			Name:      "decisions_total",
			Help:      "Authorization decisions by action and outcome.",
		},
		[]string{"action", "allowed"},
	)

	irregularTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savor",
			Subsystem: "orders",
			Name:      "irregular_transitions_total",
			Help:      "Status changes outside the documented order lifecycle.",
		},
		[]string{"from", "to"},
	)

	orderEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savor",
			Subsystem: "orders",
			Name:      "events_published_total",
			Help:      "Order events handed to the event bus.",
		},
		[]string{"type", "success"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "savor",
			Subsystem: "catalog",
			Name:      "cache_lookups_total",
			Help:      "Restaurant cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		policyDecisions,
		irregularTransitions,
		orderEvents,
		cacheLookups,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := CanonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// ObservePolicyDecision counts an authorization verdict. It matches
// policy.Observer.
func ObservePolicyDecision(action policy.Action, allowed bool) {
	policyDecisions.WithLabelValues(string(action), strconv.FormatBool(allowed)).Inc()
}

// RecordIrregularTransition counts a status change the lifecycle does not
// define.
func RecordIrregularTransition(from, to models.OrderStatus) {
	irregularTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordOrderEvent counts an order event publish attempt.
func RecordOrderEvent(eventType models.OrderEventType, success bool) {
	orderEvents.WithLabelValues(string(eventType), strconv.FormatBool(success)).Inc()
}

// RecordCacheLookup counts a catalog cache hit, miss or error.
func RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// CanonicalPath collapses ids out of a request path so label cardinality
// stays bounded, e.g. /orders/abc/status becomes /orders/:id/status.
func CanonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) > 1 && parts[0] != "cart" {
		parts[1] = ":id"
	}
	if len(parts) > 2 && parts[0] == "cart" && parts[1] == "items" {
		parts[2] = ":id"
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return "/" + strings.Join(parts, "/")
}
