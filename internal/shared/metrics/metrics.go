package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoice"

var (
	registry = prometheus.NewRegistry()

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	extractionStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "started_total",
			Help:      "Extractions started by content kind.",
		},
		[]string{"kind"},
	)
	extractionCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "completed_total",
			Help:      "Extractions that produced a result.",
		},
	)
	extractionFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "failed_total",
			Help:      "Extractions that failed, by reason.",
		},
		[]string{"reason"},
	)
	extractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Extraction duration including the model call.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
	analystQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analyst",
			Name:      "queries_total",
			Help:      "Analyst questions by outcome.",
		},
		[]string{"outcome"},
	)
	modelTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Token usage reported by the model provider.",
		},
		[]string{"provider", "model", "direction"},
	)
)

func init() {
	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		extractionStartedTotal,
		extractionCompletedTotal,
		extractionFailedTotal,
		extractionDuration,
		analystQueriesTotal,
		modelTokensTotal,
	)
}

// IncExtractionStarted counts an extraction for the given content kind.
func IncExtractionStarted(kind string) {
	extractionStartedTotal.WithLabelValues(labelOr(kind)).Inc()
}

// IncExtractionCompleted increments the completed counter.
func IncExtractionCompleted() {
	extractionCompletedTotal.Inc()
}

// IncExtractionFailed counts a failed extraction.
func IncExtractionFailed(reason string) {
	extractionFailedTotal.WithLabelValues(labelOr(reason)).Inc()
}

// ObserveExtractionDuration records how long an extraction took.
func ObserveExtractionDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	extractionDuration.Observe(d.Seconds())
}

// IncAnalystQuery counts an analyst question.
func IncAnalystQuery(outcome string) {
	analystQueriesTotal.WithLabelValues(labelOr(outcome)).Inc()
}

// ObserveModelTokens adds provider-reported token counts.
func ObserveModelTokens(provider, model string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		modelTokensTotal.WithLabelValues(labelOr(provider), labelOr(model), "in").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		modelTokensTotal.WithLabelValues(labelOr(provider), labelOr(model), "out").Add(float64(completionTokens))
	}
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// HTTPHandler exposes the registry for non-gin servers.
func HTTPHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func labelOr(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
