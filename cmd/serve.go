package cmd

import (
	"context"
	"fmt"

	"grocer/internal/app"
	"grocer/internal/config"

	"github.com/spf13/cobra"
)

var (
	serveTransport  string
	serveHost       string
	servePort       int
	serveConfigPath string
	serveDebug      bool
)

// serveCmd starts the MCP server. This is the main command of grocer.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the grocer MCP server",
	Long: `Starts the grocer MCP server and serves the Grocy tool catalog to
AI assistants.

Configuration is loaded from config.yaml in the configuration directory
(default: ~/.config/grocer), with GROCY_API_URL, GROCY_API_KEY and
HA_TOKEN environment variables taking precedence. A .env file in the
working directory is honored.

With the stdio transport all logging is suppressed, since stdout
belongs to the MCP protocol.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.Config{
		Debug:      serveDebug,
		Silent:     serveTransport == config.MCPTransportStdio,
		ConfigPath: serveConfigPath,
		Transport:  serveTransport,
		Host:       serveHost,
		Port:       servePort,
		Version:    GetVersion(),
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "MCP transport to use: sse, stdio or streamable-http")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind the HTTP transports to")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port for the HTTP transports")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}
