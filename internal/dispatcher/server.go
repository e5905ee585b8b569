package dispatcher

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"akamai-mcp-gateway/internal/executor"
	"akamai-mcp-gateway/internal/metrics"
	"akamai-mcp-gateway/internal/registry"
	"akamai-mcp-gateway/internal/shutdown"
)

const (
	serverName    = "akamai-mcp-gateway"
	serverVersion = "1.0.0"
)

// Dispatcher owns the MCP server instance and wires it to the registry
// and executor: every registry.Operation becomes one MCP tool, plus the
// fixed set of meta-tools for operating on the catalog.
type Dispatcher struct {
	reg      *registry.Registry
	exec     *executor.Executor
	metrics  *metrics.Collector
	shutdown *shutdown.Coordinator
	loadedAt time.Time

	mcpServer *server.MCPServer
}

func New(reg *registry.Registry, exec *executor.Executor, coll *metrics.Collector, coord *shutdown.Coordinator) *Dispatcher {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	d := &Dispatcher{
		reg:       reg,
		exec:      exec,
		metrics:   coll,
		shutdown:  coord,
		loadedAt:  time.Now().UTC(),
		mcpServer: mcpServer,
	}

	tools := append(d.toolsFromRegistry(), d.metaTools()...)
	mcpServer.AddTools(tools...)

	return d
}

// Serve blocks, handling JSON-RPC over stdio, until the stdio transport
// closes. ctx is not passed to the stdio server, so cancelling it does not
// stop Serve.
func (d *Dispatcher) Serve(ctx context.Context) error {
	return server.ServeStdio(d.mcpServer)
}
