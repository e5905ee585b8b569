package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every metric the gateway emits. It is safe for
// concurrent use; callers obtain it once at startup and pass it to every
// component that needs to record a measurement.
type Collector struct {
	ToolCallsTotal           *prometheus.CounterVec
	ToolCallErrorsTotal      *prometheus.CounterVec
	UpstreamCallsTotal       *prometheus.CounterVec
	CacheHitsTotal           prometheus.Counter
	CacheMissesTotal         prometheus.Counter
	RateLimitWaitsTotal      prometheus.Counter
	BreakerOpensTotal        *prometheus.CounterVec
	InFlightRequests         prometheus.Gauge
	PaginationPagesTotal     prometheus.Counter
	PaginationItemsTotal     prometheus.Counter
	PaginationDurationMs     prometheus.Histogram
	RegistryOperationsLoaded prometheus.Gauge
	RetryAttemptsTotal       *prometheus.CounterVec
	RetryOutcomesTotal       *prometheus.CounterVec
	ProcessStartTimestamp    prometheus.Gauge

	latency *sampleHistogram
}

// NewCollector builds and registers every metric on reg. Pass
// prometheus.NewRegistry() in production and tests alike to avoid the
// global default registry's cross-test and cross-instance pollution.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "akamai_gateway_tool_calls_total",
			Help: "Total tool calls dispatched, by tool name.",
		}, []string{"tool"}),
		ToolCallErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "akamai_gateway_tool_call_errors_total",
			Help: "Total tool calls that failed, by tool name and error kind.",
		}, []string{"tool", "kind"}),
		UpstreamCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "akamai_gateway_upstream_calls_total",
			Help: "Total HTTP calls made to Akamai, by status class.",
		}, []string{"status_class"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "akamai_gateway_cache_hits_total",
			Help: "Total response cache hits.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "akamai_gateway_cache_misses_total",
			Help: "Total response cache misses.",
		}),
		RateLimitWaitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "akamai_gateway_rate_limit_waits_total",
			Help: "Total times a call blocked on the rate limiter.",
		}),
		BreakerOpensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "akamai_gateway_breaker_opens_total",
			Help: "Total circuit breaker open transitions, by host.",
		}, []string{"host"}),
		InFlightRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "akamai_gateway_in_flight_requests",
			Help: "Number of tool calls currently executing.",
		}),
		PaginationPagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "akamai_gateway_pagination_pages_total",
			Help: "Total pages fetched across all paginated tool calls.",
		}),
		PaginationItemsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "akamai_gateway_pagination_items_total",
			Help: "Sum over multi-page tool calls of the item total reported by the first page (totalCount/totalItems, 0 when absent).",
		}),
		PaginationDurationMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "akamai_gateway_pagination_duration_milliseconds",
			Help:    "Duration of paginated tool calls, in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		}),
		RegistryOperationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "akamai_gateway_registry_operations_loaded",
			Help: "Total operations in the currently loaded registry.",
		}),
		RetryAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "akamai_gateway_retry_attempts_total",
			Help: "Total upstream call attempts, including first tries.",
		}, []string{"tool"}),
		RetryOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "akamai_gateway_retry_outcomes_total",
			Help: "Outcome of calls that needed at least one retry, by outcome.",
		}, []string{"outcome"}),
		ProcessStartTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "akamai_gateway_process_start_timestamp_seconds",
			Help: "Unix timestamp at which this process's collector was created.",
		}),
		latency: newSampleHistogram(4096),
	}
	c.ProcessStartTimestamp.Set(float64(time.Now().Unix()))

	reg.MustRegister(
		c.ToolCallsTotal,
		c.ToolCallErrorsTotal,
		c.UpstreamCallsTotal,
		c.CacheHitsTotal,
		c.CacheMissesTotal,
		c.RateLimitWaitsTotal,
		c.BreakerOpensTotal,
		c.InFlightRequests,
		c.PaginationPagesTotal,
		c.PaginationItemsTotal,
		c.PaginationDurationMs,
		c.RegistryOperationsLoaded,
		c.RetryAttemptsTotal,
		c.RetryOutcomesTotal,
		c.ProcessStartTimestamp,
	)
	return c
}

// ObserveLatency records one tool call's duration in milliseconds for
// percentile computation.
func (c *Collector) ObserveLatency(ms float64) {
	c.latency.observe(ms)
}

// Percentiles returns the exact p50/p95/p99 of everything observed so far
// (bounded to the most recent samples the histogram retains).
func (c *Collector) Percentiles() (p50, p95, p99 float64) {
	return c.latency.percentile(0.50), c.latency.percentile(0.95), c.latency.percentile(0.99)
}

// sampleHistogram keeps a bounded ring of raw samples, trading unbounded
// memory growth for exact (rather than bucket-estimated) percentiles —
// Prometheus's own Histogram type cannot report p50/p95/p99 precisely, it
// can only estimate from fixed buckets, which the gateway's diagnostics
// explicitly need to avoid.
type sampleHistogram struct {
	mu      sync.Mutex
	samples []float64
	cap     int
	next    int
	filled  bool
}

func newSampleHistogram(capacity int) *sampleHistogram {
	return &sampleHistogram{samples: make([]float64, capacity), cap: capacity}
}

func (h *sampleHistogram) observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples[h.next] = v
	h.next = (h.next + 1) % h.cap
	if h.next == 0 {
		h.filled = true
	}
}

func (h *sampleHistogram) percentile(p float64) float64 {
	h.mu.Lock()
	n := h.cap
	if !h.filled {
		n = h.next
	}
	if n == 0 {
		h.mu.Unlock()
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, h.samples[:n])
	h.mu.Unlock()

	sort.Float64s(sorted)
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
