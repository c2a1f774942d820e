// Package metrics exposes Prometheus counters and histograms for the HTTP
// API, the report pipeline, the AI gateway and field extraction. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "laudo"

type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	attemptsTotal  *prometheus.CounterVec
	reportsTotal   *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec

	llmCallsTotal   *prometheus.CounterVec
	llmCallDuration *prometheus.HistogramVec
	llmTokensTotal  *prometheus.CounterVec

	extractionsTotal  *prometheus.CounterVec
	extractionMissing prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		},
	)
	attemptsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "attempts_total",
			Help:      "Generation strategy attempts by validation outcome.",
		},
		[]string{"strategy", "accepted"},
	)
	reportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "generated_total",
			Help:      "Generated reports by mode, final strategy and status.",
		},
		[]string{"mode", "strategy", "status"},
	)
	reportDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "duration_seconds",
			Help:      "Report generation duration in seconds.",
			Buckets:   []float64{0.01, 0.1, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"mode"},
	)
	llmCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Model calls by provider and status.",
		},
		[]string{"provider", "status"},
	)
	llmCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Model call duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"provider"},
	)
	llmTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Approximate token usage by direction.",
		},
		[]string{"provider", "direction"},
	)
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "runs_total",
			Help:      "Field extraction runs by status.",
		},
		[]string{"status"},
	)
	extractionMissing := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "missing_fields",
			Help:      "Distribution of missing-field notes per extraction.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 7, 10},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		attemptsTotal,
		reportsTotal,
		reportDuration,
		llmCallsTotal,
		llmCallDuration,
		llmTokensTotal,
		extractionsTotal,
		extractionMissing,
	)

	return &Metrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		attemptsTotal:     attemptsTotal,
		reportsTotal:      reportsTotal,
		reportDuration:    reportDuration,
		llmCallsTotal:     llmCallsTotal,
		llmCallDuration:   llmCallDuration,
		llmTokensTotal:    llmTokensTotal,
		extractionsTotal:  extractionsTotal,
		extractionMissing: extractionMissing,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartRequest marks a request in flight and returns its completion hook.
func (m *Metrics) StartRequest() func(method, path string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	start := time.Now()
	m.requestInFlight.Inc()
	return func(method, path string, status int) {
		m.requestInFlight.Dec()
		m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) RecordAttempt(strategy string, accepted bool) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(strategy, strconv.FormatBool(accepted)).Inc()
}

func (m *Metrics) RecordReport(mode, strategy string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	if strategy == "" {
		strategy = "none"
	}
	m.reportsTotal.WithLabelValues(mode, strategy, status).Inc()
	m.reportDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMCall(provider string, duration time.Duration, promptTokens, completionTokens int, err error) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.llmCallsTotal.WithLabelValues(provider, status).Inc()
	m.llmCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if promptTokens > 0 {
		m.llmTokensTotal.WithLabelValues(provider, "in").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.llmTokensTotal.WithLabelValues(provider, "out").Add(float64(completionTokens))
	}
}

func (m *Metrics) RecordExtraction(missing int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.extractionsTotal.WithLabelValues("error").Inc()
		return
	}
	m.extractionsTotal.WithLabelValues("success").Inc()
	m.extractionMissing.Observe(float64(missing))
}
