package common

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// StringArg returns the named string argument, or fallback when absent or
// not a string.
func StringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// BoolArg returns the named bool argument, or fallback when absent.
func BoolArg(args map[string]interface{}, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}

// Int64Arg returns the named numeric argument. JSON numbers arrive as
// float64.
func Int64Arg(args map[string]interface{}, key string, fallback int64) int64 {
	if v, ok := args[key].(float64); ok {
		return int64(v)
	}
	return fallback
}

// TimeArg parses the named argument as RFC 3339, or returns fallback when
// absent. A present but malformed value is an error.
func TimeArg(args map[string]interface{}, key string, fallback time.Time) (time.Time, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC 3339 (e.g. 2026-08-29T09:00:00Z): %v", key, err)
	}
	return t, nil
}

// JSONResult marshals v as indented JSON into a tool result.
func JSONResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
