// Package metrics instruments the gateway with Prometheus counters and
// gauges, plus a sample-based histogram for exact latency percentiles
// that Prometheus's bucket-based histogram type cannot provide.
package metrics
