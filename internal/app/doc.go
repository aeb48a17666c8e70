// Package app bootstraps grocer: it loads and validates configuration,
// initializes logging, wires the Home Assistant session manager into the
// Grocy client, and runs the MCP server until shutdown.
package app
