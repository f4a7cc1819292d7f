package utils

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// MetricsRegistry is the dedicated Prometheus registry for the portal.
	MetricsRegistry = prometheus.NewRegistry()

	// SuggestionRequests counts suggestion requests by outcome.
	SuggestionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "suggestion_requests_total", Help: "Suggestion requests by outcome."},
		[]string{"outcome"},
	)
	// SuggestionDuration records end-to-end suggestion latency in seconds.
	SuggestionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "suggestion_duration_seconds", Help: "Suggestion request duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	// ProviderCalls counts outbound provider calls by provider and status.
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "provider_calls_total", Help: "Outbound provider calls by provider and status."},
		[]string{"provider", "status"},
	)
)

var metricsOnce sync.Once

// RegisterMetrics registers all collectors on the portal registry.
func RegisterMetrics() {
	metricsOnce.Do(func() {
		MetricsRegistry.MustRegister(SuggestionRequests)
		MetricsRegistry.MustRegister(SuggestionDuration)
		MetricsRegistry.MustRegister(ProviderCalls)
		MetricsRegistry.MustRegister(collectors.NewGoCollector())
		MetricsRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
