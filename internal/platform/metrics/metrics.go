package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eduvista"

var (
	// httpRequestsTotal counts requests by method, route, and status.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)

	// httpRequestDurationSeconds observes request latency in seconds.
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	rateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_exceeded_total",
			Help:      "Number of requests rejected due to rate limiting (HTTP 429).",
		},
	)

	rateLimitClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_clients",
			Help:      "Client buckets currently tracked by the rate limiter.",
		},
	)

	// scheduledItems counts scheduled rows processed.
	// Labels:
	// - kind:    "blog", "social" or "newsletter"
	// - outcome: "success" or "failure"
	scheduledItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "items_total",
			Help:      "Scheduled items processed by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	// externalCalls counts calls to hosted platforms.
	// Labels:
	// - provider: "brevo", "ayrshare", "linkedin", "twitter", "sanity", "supabase", "llm"
	// - outcome:  "success" or "failure"
	externalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "external",
			Name:      "calls_total",
			Help:      "Calls to third-party platforms by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	automationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "automation",
			Name:      "runs_total",
			Help:      "Automation rule executions by trigger, action and outcome.",
		},
		[]string{"trigger", "action", "outcome"},
	)
)

// ObserveHTTPRequest records a finished request.
func ObserveHTTPRequest(method, route, status string, seconds float64) {
	if route == "" {
		route = "unknown"
	}
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, status).Observe(seconds)
}

// IncRateLimitExceeded increments the 429 counter.
func IncRateLimitExceeded() {
	rateLimitExceeded.Inc()
}

// SetRateLimitClients records how many client buckets the limiter holds.
func SetRateLimitClients(n int) {
	rateLimitClients.Set(float64(n))
}

// AddScheduledItems adds processed scheduler items for kind.
func AddScheduledItems(kind string, succeeded, failed int) {
	if kind == "" {
		kind = "unknown"
	}
	if succeeded > 0 {
		scheduledItems.WithLabelValues(kind, "success").Add(float64(succeeded))
	}
	if failed > 0 {
		scheduledItems.WithLabelValues(kind, "failure").Add(float64(failed))
	}
}

// IncExternalCall records the outcome of a call to provider.
func IncExternalCall(provider string, err error) {
	if provider == "" {
		provider = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	externalCalls.WithLabelValues(provider, outcome).Inc()
}

// IncAutomationRun records an automation rule execution.
func IncAutomationRun(trigger, action string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	automationRuns.WithLabelValues(trigger, action, outcome).Inc()
}

// Handler exposes the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
