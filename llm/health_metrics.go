package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Health-probe metrics, grounded on the teacher's
// health_check_metrics.go: a gauge for the last probe's outcome per
// provider, a latency histogram, and a failure counter. Manager.isHealthy
// is the only caller; Dispatch/Complete never touch these directly.
var (
	providerHealthyGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queryengine_llm_provider_healthy",
			Help: "Most recent LLM provider health probe result (1 healthy, 0 unhealthy).",
		},
		[]string{"provider"},
	)
	providerHealthCheckLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queryengine_llm_provider_health_check_latency_ms",
			Help:    "LLM provider health probe latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"provider"},
	)
	providerHealthCheckFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryengine_llm_provider_health_check_failures_total",
			Help: "Total LLM provider health probes that came back unhealthy.",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(providerHealthyGauge, providerHealthCheckLatency, providerHealthCheckFailures)
}

// recordHealthProbe publishes one provider's probe outcome. Called with
// the probe's wall-clock latency already measured, so a slow Available
// implementation shows up in the histogram even when it ultimately
// reports healthy.
func recordHealthProbe(provider string, healthy bool, latency time.Duration) {
	if provider == "" {
		provider = "unknown"
	}
	if healthy {
		providerHealthyGauge.WithLabelValues(provider).Set(1)
	} else {
		providerHealthyGauge.WithLabelValues(provider).Set(0)
		providerHealthCheckFailures.WithLabelValues(provider).Inc()
	}
	providerHealthCheckLatency.WithLabelValues(provider).Observe(float64(latency.Milliseconds()))
}
