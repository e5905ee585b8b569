package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

var rootCmd = &cobra.Command{
	Use:   "akamai-mcp-gateway",
	Short: "Dynamic MCP gateway over Akamai's management APIs",
	Long: `akamai-mcp-gateway ingests an OpenAPI catalog for Akamai's management
APIs and exposes every operation as an MCP tool over stdio, signing and
rate-limiting every request with EdgeGrid credentials.`,
	SilenceUsage: true,
}

func SetVersion(v string) {
	rootCmd.Version = v
}

func GetVersion() string {
	return rootCmd.Version
}

func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "akamai-mcp-gateway version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
}
