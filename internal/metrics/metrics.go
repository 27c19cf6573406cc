package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	llmRequestsTotal   *prometheus.CounterVec
	llmTokensTotal     *prometheus.CounterVec
	llmCostUSDTotal    *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	sessionsTotal      *prometheus.CounterVec
	sessionsActive     prometheus.Gauge
	sectionsTotal      *prometheus.CounterVec
	documentsFinalized prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.llmRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_llm_requests_total",
			Help: "Total number of LLM generation calls",
		},
		[]string{"provider", "status"},
	)
	r.llmTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_llm_tokens_total",
			Help: "Total tokens consumed, by provider and direction",
		},
		[]string{"provider", "type"},
	)
	r.llmCostUSDTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_llm_cost_usd_total",
			Help: "Accumulated generation cost in USD",
		},
		[]string{"provider"},
	)
	r.llmRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scribe_llm_request_duration_seconds",
			Help:    "LLM call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)
	r.sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_sessions_total",
			Help: "Sessions by task type and final status",
		},
		[]string{"task_type", "status"},
	)
	r.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scribe_sessions_active",
			Help: "Number of sessions not yet finalized or abandoned",
		},
	)
	r.sectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_sections_total",
			Help: "Document sections drafted, by status",
		},
		[]string{"status"},
	)
	r.documentsFinalized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scribe_documents_finalized_total",
			Help: "Total number of finalized documents",
		},
	)

	reg.MustRegister(r.llmRequestsTotal)
	reg.MustRegister(r.llmTokensTotal)
	reg.MustRegister(r.llmCostUSDTotal)
	reg.MustRegister(r.llmRequestDuration)
	reg.MustRegister(r.sessionsTotal)
	reg.MustRegister(r.sessionsActive)
	reg.MustRegister(r.sectionsTotal)
	reg.MustRegister(r.documentsFinalized)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	r.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordLLMCall records one completed generation call, success or failure.
func (r *Registry) RecordLLMCall(providerName, status string, promptTokens, completionTokens int, costUSD, durationSec float64) {
	r.llmRequestsTotal.WithLabelValues(providerName, status).Inc()
	if promptTokens > 0 {
		r.llmTokensTotal.WithLabelValues(providerName, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		r.llmTokensTotal.WithLabelValues(providerName, "completion").Add(float64(completionTokens))
	}
	if costUSD > 0 {
		r.llmCostUSDTotal.WithLabelValues(providerName).Add(costUSD)
	}
	r.llmRequestDuration.WithLabelValues(providerName).Observe(durationSec)
}

// RecordSession records a session reaching a terminal or initial status.
func (r *Registry) RecordSession(taskType, status string) {
	r.sessionsTotal.WithLabelValues(taskType, status).Inc()
}

// SessionStarted increments the active session gauge.
func (r *Registry) SessionStarted() {
	r.sessionsActive.Inc()
}

// SessionEnded decrements the active session gauge.
func (r *Registry) SessionEnded() {
	r.sessionsActive.Dec()
}

// RecordSection records one drafted document section.
func (r *Registry) RecordSection(status string) {
	r.sectionsTotal.WithLabelValues(status).Inc()
}

// DocumentFinalized increments the finalized document counter.
func (r *Registry) DocumentFinalized() {
	r.documentsFinalized.Inc()
}

// Handler returns the HTTP handler exposing the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
