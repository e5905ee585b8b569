// Package dispatcher wires the operation registry and executor into an
// MCP server: one generated tool per registry.Operation, plus a small set
// of meta-tools (raw_request, list_operations, registry_stats) for
// operating on the catalog itself rather than a single upstream endpoint.
package dispatcher
