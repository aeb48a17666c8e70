package server

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolResponse is the standard envelope returned by every grocer tool:
// structured data, a human-readable summary, and suggested follow-up tools.
type ToolResponse struct {
	Data    map[string]interface{} `json:"data"`
	Summary string                 `json:"summary"`
	Next    []string               `json:"next,omitempty"`
}

// toolResult wraps data and summary in a ToolResponse and serializes it as
// the tool's text content.
func toolResult(data map[string]interface{}, summary string, next ...string) *mcp.CallToolResult {
	response := ToolResponse{
		Data:    data,
		Summary: summary,
		Next:    next,
	}

	jsonData, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode tool response: %v", err))
	}

	return mcp.NewToolResultText(string(jsonData))
}

// failureResult builds the envelope used when a repository call fails:
// the error lands in data.error so that assistants can inspect it.
func failureResult(data map[string]interface{}, summary string, err error, next ...string) *mcp.CallToolResult {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["error"] = err.Error()
	return toolResult(data, summary, next...)
}

// Argument helpers. MCP arguments arrive as generic JSON, so numbers are
// float64 and integers need explicit coercion.

func argString(args map[string]interface{}, key string) (string, bool) {
	value, ok := args[key].(string)
	return value, ok
}

func argFloat(args map[string]interface{}, key string) (float64, bool) {
	value, ok := args[key].(float64)
	return value, ok
}

func argInt(args map[string]interface{}, key string) (int, bool) {
	value, ok := args[key].(float64)
	if !ok {
		return 0, false
	}
	return int(value), true
}

func argBool(args map[string]interface{}, key string) (bool, bool) {
	value, ok := args[key].(bool)
	return value, ok
}

// optionalIntPtr returns a pointer for optional integer arguments, nil when
// absent.
func optionalIntPtr(args map[string]interface{}, key string) *int {
	if value, ok := argInt(args, key); ok {
		return &value
	}
	return nil
}

// optionalFloatPtr returns a pointer for optional number arguments, nil
// when absent.
func optionalFloatPtr(args map[string]interface{}, key string) *float64 {
	if value, ok := argFloat(args, key); ok {
		return &value
	}
	return nil
}
