package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the grocer application.
var rootCmd = &cobra.Command{
	Use:   "grocer",
	Short: "Expose a Grocy instance to AI assistants via MCP",
	Long: `grocer bridges a Grocy instance running as a Home Assistant add-on
to AI assistants through the Model Context Protocol.

It maintains a short-lived ingress session over the Home Assistant
supervisor websocket, proxies Grocy REST calls with retries, and serves
stock, shopping list and master data tools over SSE, stdio or streamable
HTTP.`,
	// SilenceUsage keeps handled runtime errors from dumping the usage text.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from main to
// inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "grocer version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
