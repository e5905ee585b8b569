// Package executor turns a registry.Operation plus caller-supplied
// arguments into a single well-formed outbound HTTP call, drives
// pagination across multiple pages, and classifies failures into the
// typed error taxonomy callers (the dispatcher) report back over MCP.
//
// executor.Executor itself holds no network state: it orchestrates a
// signer, rate limiter, retry driver, circuit breaker, cache, and
// transport that are each owned and tested independently.
package executor
