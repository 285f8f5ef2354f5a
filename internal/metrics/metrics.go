// Package metrics provides Prometheus metrics for the report pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	TokensTotal      *prometheus.CounterVec
	DocumentsStored  prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamie_requests_total",
				Help: "Total number of HTTP requests by route and status.",
			},
			[]string{"route", "status"},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamie_analyses_total",
				Help: "Total number of synthesis runs by model and outcome.",
			},
			[]string{"model", "outcome"},
		),
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "teamie_analysis_duration_seconds",
				Help:    "Synthesis duration by model.",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"model"},
		),
		TokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamie_llm_tokens_total",
				Help: "Total LLM tokens consumed by model and direction.",
			},
			[]string{"model", "direction"},
		),
		DocumentsStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "teamie_documents_stored_total",
				Help: "Total number of uploaded documents written to the store.",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamie_errors_total",
				Help: "Total errors by component and type.",
			},
			[]string{"component", "type"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.AnalysesTotal)
	reg.MustRegister(m.AnalysisDuration)
	reg.MustRegister(m.TokensTotal)
	reg.MustRegister(m.DocumentsStored)
	reg.MustRegister(m.ErrorsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(route, status string) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
}

// RecordAnalysis increments the synthesis counter.
func (m *Metrics) RecordAnalysis(model, outcome string) {
	m.AnalysesTotal.WithLabelValues(model, outcome).Inc()
}

// ObserveAnalysisDuration records how long a synthesis run took.
func (m *Metrics) ObserveAnalysisDuration(model string, seconds float64) {
	m.AnalysisDuration.WithLabelValues(model).Observe(seconds)
}

// RecordTokens adds prompt and completion token usage for a model.
func (m *Metrics) RecordTokens(model string, prompt, completion int) {
	m.TokensTotal.WithLabelValues(model, "prompt").Add(float64(prompt))
	m.TokensTotal.WithLabelValues(model, "completion").Add(float64(completion))
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, errType string) {
	m.ErrorsTotal.WithLabelValues(component, errType).Inc()
}
