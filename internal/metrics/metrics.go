// Package metrics exposes Prometheus instrumentation for the interpretation
// pipeline. A single Recorder is created at startup and threaded through the
// components that produce measurements.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the pipeline's metric instruments.
type Recorder struct {
	registry *prometheus.Registry

	pagesInterpreted prometheus.Counter
	llmRequests      *prometheus.CounterVec
	validationRetries prometheus.Counter
	promptTokens     prometheus.Counter
	completionTokens prometheus.Counter
	interpretSeconds prometheus.Histogram
	jobsActive       prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		pagesInterpreted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survaize",
			Name:      "pages_interpreted_total",
			Help:      "Pages successfully interpreted.",
		}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survaize",
			Name:      "llm_requests_total",
			Help:      "LLM chat requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		validationRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survaize",
			Name:      "validation_retries_total",
			Help:      "Structured-output validation failures that triggered a retry.",
		}),
		promptTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survaize",
			Name:      "prompt_tokens_total",
			Help:      "Prompt tokens consumed across all LLM calls.",
		}),
		completionTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survaize",
			Name:      "completion_tokens_total",
			Help:      "Completion tokens consumed across all LLM calls.",
		}),
		interpretSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "survaize",
			Name:      "interpret_duration_seconds",
			Help:      "Wall time of full document interpretations.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		jobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survaize",
			Name:      "jobs_active",
			Help:      "Interpretation jobs currently running.",
		}),
	}
	reg.MustRegister(
		r.pagesInterpreted, r.llmRequests, r.validationRetries,
		r.promptTokens, r.completionTokens, r.interpretSeconds, r.jobsActive,
	)
	return r
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) PageInterpreted() {
	if r == nil {
		return
	}
	r.pagesInterpreted.Inc()
}

func (r *Recorder) LLMRequest(provider, outcome string) {
	if r == nil {
		return
	}
	r.llmRequests.WithLabelValues(provider, outcome).Inc()
}

func (r *Recorder) ValidationRetry() {
	if r == nil {
		return
	}
	r.validationRetries.Inc()
}

func (r *Recorder) Tokens(prompt, completion int) {
	if r == nil {
		return
	}
	r.promptTokens.Add(float64(prompt))
	r.completionTokens.Add(float64(completion))
}

func (r *Recorder) InterpretDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.interpretSeconds.Observe(d.Seconds())
}

func (r *Recorder) JobStarted() {
	if r == nil {
		return
	}
	r.jobsActive.Inc()
}

func (r *Recorder) JobFinished() {
	if r == nil {
		return
	}
	r.jobsActive.Dec()
}
