package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"akamai-mcp-gateway/internal/executor"
	"akamai-mcp-gateway/internal/registry"
	"akamai-mcp-gateway/pkg/logging"
	akstrings "akamai-mcp-gateway/pkg/strings"
)

// toolDescriptionMaxLen bounds MCP tool descriptions so clients that render
// a flat tool list don't end up with multi-paragraph OpenAPI summaries.
const toolDescriptionMaxLen = 240

// toolsFromRegistry builds one server.ServerTool per operation in reg,
// each one a thin handler that resolves arguments and calls through exec.
func (d *Dispatcher) toolsFromRegistry() []server.ServerTool {
	ops := d.reg.All()
	tools := make([]server.ServerTool, 0, len(ops))
	for _, op := range ops {
		tools = append(tools, server.ServerTool{
			Tool:    toolDescriptor(op),
			Handler: d.operationHandler(op),
		})
	}
	return tools
}

func toolDescriptor(op *registry.Operation) mcp.Tool {
	return mcp.Tool{
		Name:        op.ToolName,
		Description: toolDescription(op),
		InputSchema: inputSchema(op),
	}
}

func toolDescription(op *registry.Operation) string {
	raw := op.Summary
	if raw == "" {
		raw = op.Description
	}
	if raw == "" {
		raw = fmt.Sprintf("%s %s", op.Method, op.Path)
	}
	return akstrings.TruncateDescription(raw, toolDescriptionMaxLen)
}

func inputSchema(op *registry.Operation) mcp.ToolInputSchema {
	properties := make(map[string]interface{})
	var required []string

	for _, p := range op.AllParams() {
		properties[p.Name] = schemaToJSONSchema(p.Schema, p.Description)
		if p.Required {
			required = append(required, p.Name)
		}
	}
	if op.RequestBody != nil {
		properties["body"] = schemaToJSONSchema(op.RequestBody.Schema, "request body")
		if op.RequestBody.Required {
			required = append(required, "body")
		}
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func schemaToJSONSchema(s registry.Schema, description string) map[string]interface{} {
	out := map[string]interface{}{"description": description}
	switch s.Kind {
	case registry.SchemaEnum:
		out["type"] = firstNonEmpty(s.Type, "string")
		enum := make([]interface{}, len(s.Enum))
		for i, v := range s.Enum {
			enum[i] = v
		}
		out["enum"] = enum
	case registry.SchemaArray:
		out["type"] = "array"
		if s.Items != nil {
			out["items"] = schemaToJSONSchema(*s.Items, "")
		}
	case registry.SchemaObject:
		out["type"] = "object"
		if len(s.Properties) > 0 {
			props := make(map[string]interface{}, len(s.Properties))
			for name, prop := range s.Properties {
				props[name] = schemaToJSONSchema(*prop, "")
			}
			out["properties"] = props
		}
	case registry.SchemaRecursive:
		out["type"] = "object"
		out["description"] = description + " (recursive schema, depth-limited)"
	default:
		out["type"] = firstNonEmpty(s.Type, "string")
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (d *Dispatcher) operationHandler(op *registry.Operation) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !d.shutdown.Begin() {
			return mcp.NewToolResultError("gateway is shutting down, retry not possible"), nil
		}
		defer d.shutdown.End()

		args := req.GetArguments()

		if d.metrics != nil {
			d.metrics.InFlightRequests.Inc()
			defer d.metrics.InFlightRequests.Dec()
		}

		result, err := d.exec.Execute(ctx, executor.ExecutionRequest{Operation: op, Arguments: args})
		d.recordCall(op, err)
		if err != nil {
			return d.errorResult(op, err), nil
		}

		return mcp.NewToolResultText(string(result.Body)), nil
	}
}

func (d *Dispatcher) recordCall(op *registry.Operation, err error) {
	if d.metrics == nil {
		return
	}
	d.metrics.ToolCallsTotal.WithLabelValues(op.ToolName).Inc()
	if err != nil {
		var execErr *executor.Error
		kind := "unknown"
		if errors.As(err, &execErr) {
			kind = string(execErr.Kind)
		}
		d.metrics.ToolCallErrorsTotal.WithLabelValues(op.ToolName, kind).Inc()
	}
}

// errorResult renders an executor error as an MCP tool-result error (never
// as a JSON-RPC protocol error — that channel is reserved for malformed
// requests the dispatcher itself rejects, per spec §6.3).
func (d *Dispatcher) errorResult(op *registry.Operation, err error) *mcp.CallToolResult {
	var execErr *executor.Error
	if errors.As(err, &execErr) {
		logging.WarnFields("Dispatcher", "tool call failed", map[string]interface{}{
			"tool": op.ToolName, "kind": execErr.Kind, "status": execErr.StatusCode,
		})
		payload, _ := json.Marshal(map[string]interface{}{
			"kind":    execErr.Kind,
			"message": execErr.Message,
			"status":  execErr.StatusCode,
		})
		return mcp.NewToolResultError(string(payload))
	}
	return mcp.NewToolResultError(err.Error())
}
