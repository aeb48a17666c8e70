// Package logging provides structured, subsystem-tagged logging for grocer,
// built on Go's standard slog package.
//
// All log entries carry a subsystem identifier so that output from the
// session layer, the Grocy client and the MCP server can be filtered
// independently:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Session", "Connected to Home Assistant websocket")
//	logging.Error("GrocyClient", err, "Request failed after %d attempts", attempts)
//
// Level filtering happens at the slog handler, so messages below the
// configured level cost no allocations.
package logging
