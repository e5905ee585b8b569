package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"akamai-mcp-gateway/internal/config"
	"akamai-mcp-gateway/internal/dispatcher"
	"akamai-mcp-gateway/internal/executor"
	"akamai-mcp-gateway/internal/metrics"
	"akamai-mcp-gateway/internal/registry"
	"akamai-mcp-gateway/internal/shutdown"
	"akamai-mcp-gateway/pkg/logging"
)

var (
	flagLogLevel       string
	flagCatalogRoot    string
	flagDryRunRegistry bool
	flagDrainWindow    time.Duration
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the operation registry and serve MCP tools over stdio",
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	cmd.Flags().StringVar(&flagCatalogRoot, "catalog-root", "", "override CATALOG_ROOT, the directory of per-product OpenAPI specs")
	cmd.Flags().BoolVar(&flagDryRunRegistry, "dry-run-registry", false, "load and validate the catalog, print registry stats, and exit")
	cmd.Flags().DurationVar(&flagDrainWindow, "drain-window", 30*time.Second, "maximum time to wait for in-flight calls to finish on shutdown")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	creds, settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if flagLogLevel != "" {
		settings.LogLevel = logging.ParseLevel(flagLogLevel)
	}
	logging.Init(settings.LogLevel, os.Stderr)

	catalogRoot := flagCatalogRoot
	if catalogRoot == "" {
		catalogRoot = os.Getenv("CATALOG_ROOT")
	}
	if catalogRoot == "" {
		catalogRoot = "./openapi"
	}

	reg, err := registry.Load(catalogRoot)
	if err != nil {
		logging.Fatal("Serve", err, "failed to load operation registry from %s", catalogRoot)
	}

	stats := reg.Stats()
	logging.InfoFields("Serve", "registry loaded", map[string]interface{}{
		"totalOperations": stats.TotalOperations,
		"digest":          stats.Digest,
	})

	if flagDryRunRegistry {
		fmt.Fprintf(cmd.OutOrStdout(), "%d operations loaded at %s (digest %s)\n",
			stats.TotalOperations, time.Now().UTC().Format(time.RFC3339), stats.Digest)
		for product, count := range stats.ByProduct {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", product, count)
		}
		return nil
	}

	promReg := prometheus.NewRegistry()
	collector := metrics.NewCollector(promReg)
	collector.RegistryOperationsLoaded.Set(float64(stats.TotalOperations))

	exec := executor.New(creds, settings, collector)
	coord := shutdown.New(flagDrainWindow)
	d := dispatcher.New(reg, exec, collector, coord)

	serveCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- d.Serve(serveCtx) }()

	go func() {
		code := coord.WaitForSignal(serveCtx)
		cancel()
		os.Exit(code)
	}()

	return <-serveErr
}
