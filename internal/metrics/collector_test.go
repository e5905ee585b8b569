package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_RecordsToolCalls(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.ToolCallsTotal.WithLabelValues("akamai_papi_listproperties").Inc()

	count := testutil.ToFloat64(c.ToolCallsTotal.WithLabelValues("akamai_papi_listproperties"))
	assert.Equal(t, float64(1), count)
}

func TestCollector_RecordsPaginationAndRegistryGauges(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.PaginationPagesTotal.Add(3)
	c.PaginationItemsTotal.Add(42)
	c.RegistryOperationsLoaded.Set(128)
	c.RetryAttemptsTotal.WithLabelValues("akamai_papi_listproperties").Inc()
	c.RetryOutcomesTotal.WithLabelValues("recovered").Inc()

	assert.Equal(t, float64(3), testutil.ToFloat64(c.PaginationPagesTotal))
	assert.Equal(t, float64(42), testutil.ToFloat64(c.PaginationItemsTotal))
	assert.Equal(t, float64(128), testutil.ToFloat64(c.RegistryOperationsLoaded))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.RetryAttemptsTotal.WithLabelValues("akamai_papi_listproperties")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.RetryOutcomesTotal.WithLabelValues("recovered")))
	assert.Greater(t, testutil.ToFloat64(c.ProcessStartTimestamp), float64(0))
}

func TestSampleHistogram_ExactPercentiles(t *testing.T) {
	h := newSampleHistogram(100)
	for i := 1; i <= 100; i++ {
		h.observe(float64(i))
	}

	assert.InDelta(t, 50, h.percentile(0.50), 2)
	assert.InDelta(t, 95, h.percentile(0.95), 2)
	assert.InDelta(t, 99, h.percentile(0.99), 2)
}

func TestSampleHistogram_WrapsWhenOverCapacity(t *testing.T) {
	h := newSampleHistogram(10)
	for i := 1; i <= 25; i++ {
		h.observe(float64(i))
	}

	// only the most recent 10 samples (16..25) should remain
	assert.InDelta(t, 20, h.percentile(0.50), 3)
}
