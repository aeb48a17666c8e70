package app

// Config carries the command-line level settings into the bootstrap. Values
// set here override what config.yaml provides.
type Config struct {
	// Debug enables debug-level logging.
	Debug bool

	// Silent suppresses all log output. Required for the stdio transport,
	// where stdout belongs to the MCP protocol.
	Silent bool

	// ConfigPath overrides the default configuration directory.
	ConfigPath string

	// Transport overrides server.transport when non-empty.
	Transport string

	// Host overrides server.host when non-empty.
	Host string

	// Port overrides server.port when non-zero.
	Port int

	// Version is the build version reported by the MCP server.
	Version string
}
