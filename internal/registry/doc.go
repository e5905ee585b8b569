// Package registry ingests the vendor's OpenAPI catalog into an in-memory,
// immutable Operation Registry (spec §4.H). Loading happens once at process
// start: spec files are discovered under a root directory and read and
// JSON-decoded concurrently; then, on a single goroutine and in sorted file
// order, $ref links are resolved (both intra-file JSON Pointer and
// inter-file) and each path/method pair becomes an Operation indexed by a
// deterministic tool name, by product, and by HTTP method.
//
// After Load returns, a *Registry is read-only and safe for concurrent use
// without synchronization — every export in this package treats the
// returned value as immutable, matching the concurrency model in spec §5.
package registry
