package llm

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHealthProbe_PublishesGaugeAndLatency(t *testing.T) {
	providerHealthyGauge.Reset()
	providerHealthCheckFailures.Reset()

	recordHealthProbe("test-provider", true, 12*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(providerHealthyGauge.WithLabelValues("test-provider")))

	recordHealthProbe("test-provider", false, 5*time.Millisecond)
	assert.Equal(t, float64(0), testutil.ToFloat64(providerHealthyGauge.WithLabelValues("test-provider")))
	assert.Equal(t, float64(1), testutil.ToFloat64(providerHealthCheckFailures.WithLabelValues("test-provider")))
}

func TestRecordHealthProbe_DefaultsUnlabeledProviderName(t *testing.T) {
	providerHealthyGauge.Reset()
	recordHealthProbe("", true, time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(providerHealthyGauge.WithLabelValues("unknown")))
}
