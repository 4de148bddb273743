// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// GenerationsTotal counts pipeline outcomes by provider and result code.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generations_total",
			Help: "Generation requests by provider and result code",
		},
		[]string{"provider", "code"},
	)

	// GenerationDuration tracks end-to-end pipeline duration.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Generation pipeline duration",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"provider"},
	)

	// ProviderCallDuration tracks upstream provider latency.
	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_provider_call_duration_seconds",
			Help:    "Upstream provider call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"provider", "status"},
	)

	// LLMTokensTotal tracks tokens reported or estimated per provider.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM output tokens",
		},
		[]string{"provider"},
	)

	// UsageLogFailures counts usage writes that failed.
	UsageLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_log_failures_total",
			Help: "Usage log writes that failed and were dropped",
		},
	)

	// RateLimitRejections counts requests rejected by the per-user limiter.
	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the per-user sliding window",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordGeneration records the outcome of one pipeline run.
func RecordGeneration(provider, code string, duration float64, tokens int) {
	GenerationsTotal.WithLabelValues(provider, code).Inc()
	GenerationDuration.WithLabelValues(provider).Observe(duration)
	if tokens > 0 {
		LLMTokensTotal.WithLabelValues(provider).Add(float64(tokens))
	}
}

// RecordProviderCall records one upstream call.
func RecordProviderCall(provider string, duration float64, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	ProviderCallDuration.WithLabelValues(provider, status).Observe(duration)
}
