// Package server exposes the Grocy repository as an MCP server.
//
// The server registers the grocer tool catalog (stock bookings, product
// search, shopping lists, master data) and a set of read-only grocy://
// resources, and serves them over SSE, stdio or streamable HTTP depending
// on configuration. Every tool returns a ToolResponse envelope with
// structured data, a summary, and suggested follow-up tools.
package server
