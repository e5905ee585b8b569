package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"akamai-mcp-gateway/internal/executor"
	"akamai-mcp-gateway/internal/registry"
)

// metaTools returns the gateway's own operating tools, distinct from the
// generated per-operation tools: raw_request calls any registered
// operation by its tool name with free-form path/query/header/body
// arguments, list_operations and registry_stats expose the catalog itself.
func (d *Dispatcher) metaTools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.Tool{
				Name:        "akamai_raw_request",
				Description: "Call a registered operation by its tool name with raw path/query/header/body arguments, bypassing the per-operation tool wrapper.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"name":        map[string]interface{}{"type": "string", "description": "Tool name of the operation to call, as returned by list_operations"},
						"pathParams":  map[string]interface{}{"type": "object", "description": "Path parameter values, keyed by name"},
						"queryParams": map[string]interface{}{"type": "object", "description": "Query parameter values, keyed by name"},
						"headers":     map[string]interface{}{"type": "object", "description": "Extra request headers, keyed by header name"},
						"body":        map[string]interface{}{"type": "object", "description": "Optional JSON request body"},
						"paginate":    map[string]interface{}{"type": "boolean", "description": "Follow pagination if the operation supports it"},
						"maxPages":    map[string]interface{}{"type": "integer", "description": "Maximum pages to fetch when paginate is true (default 10, hard cap 100)"},
					},
					Required: []string{"name"},
				},
			},
			Handler: d.handleRawRequest,
		},
		{
			Tool: mcp.Tool{
				Name:        "akamai_list_operations",
				Description: "List operations in the registry, optionally filtered by product, method, or a text query.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"product":       map[string]interface{}{"type": "string"},
						"method":        map[string]interface{}{"type": "string"},
						"query":         map[string]interface{}{"type": "string"},
						"paginatedOnly": map[string]interface{}{"type": "boolean", "description": "Restrict results to operations that support pagination"},
					},
				},
			},
			Handler: d.handleListOperations,
		},
		{
			Tool: mcp.Tool{
				Name:        "akamai_registry_stats",
				Description: "Summarize the loaded operation registry: totals by product and method, and a content digest.",
				InputSchema: mcp.ToolInputSchema{Type: "object"},
			},
			Handler: d.handleRegistryStats,
		},
	}
}

func (d *Dispatcher) handleRawRequest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("\"name\" is required"), nil
	}

	op, ok := d.reg.Get(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no registered operation named %q", name)), nil
	}

	if !d.shutdown.Begin() {
		return mcp.NewToolResultError("gateway is shutting down, retry not possible"), nil
	}
	defer d.shutdown.End()

	execArgs := map[string]interface{}{}
	flattenInto(execArgs, args["pathParams"])
	flattenInto(execArgs, args["queryParams"])
	if body, ok := args["body"]; ok {
		execArgs["body"] = body
	}

	var headers map[string]string
	if raw, ok := args["headers"].(map[string]interface{}); ok {
		headers = make(map[string]string, len(raw))
		for k, v := range raw {
			headers[k] = fmt.Sprintf("%v", v)
		}
	}

	paginate, _ := args["paginate"].(bool)
	maxPages := 0
	if v, ok := args["maxPages"].(float64); ok {
		maxPages = int(v)
	}

	execReq := executor.ExecutionRequest{
		Operation: op,
		Arguments: execArgs,
		Headers:   headers,
		Paginate:  paginate,
		MaxPages:  maxPages,
	}

	if d.metrics != nil {
		d.metrics.InFlightRequests.Inc()
		defer d.metrics.InFlightRequests.Dec()
	}

	result, err := d.exec.Execute(ctx, execReq)
	d.recordCall(op, err)
	if err != nil {
		return d.errorResult(op, err), nil
	}
	return mcp.NewToolResultText(string(result.Body)), nil
}

// flattenInto copies a {name: value} object's entries into dst by key, the
// shape raw_request's pathParams/queryParams arguments take on the wire.
func flattenInto(dst map[string]interface{}, obj interface{}) {
	m, ok := obj.(map[string]interface{})
	if !ok {
		return
	}
	for k, v := range m {
		dst[k] = v
	}
}

func (d *Dispatcher) handleListOperations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	filter := registry.Filter{}
	if v, ok := args["product"].(string); ok {
		filter.Product = v
	}
	if v, ok := args["method"].(string); ok {
		filter.Method = v
	}
	if v, ok := args["query"].(string); ok {
		filter.Query = v
	}
	if v, ok := args["paginatedOnly"].(bool); ok {
		filter.PaginatedOnly = v
	}

	ops := d.reg.Search(filter)
	summaries := make([]map[string]interface{}, 0, len(ops))
	for _, op := range ops {
		summaries = append(summaries, map[string]interface{}{
			"toolName":  op.ToolName,
			"method":    op.Method,
			"path":      op.Path,
			"product":   op.Product,
			"summary":   op.Summary,
			"paginated": op.SupportsPagination,
		})
	}

	payload, err := json.Marshal(map[string]interface{}{"operations": summaries, "count": len(summaries)})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// registryStatsResponse adds a serving-time generatedAt to the registry's
// own (necessarily wall-clock-free) Stats, so a caller can tell how stale
// the running process's catalog snapshot is.
type registryStatsResponse struct {
	registry.Stats
	GeneratedAt string `json:"generatedAt"`
}

func (d *Dispatcher) handleRegistryStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := registryStatsResponse{
		Stats:       d.reg.Stats(),
		GeneratedAt: d.loadedAt.Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
