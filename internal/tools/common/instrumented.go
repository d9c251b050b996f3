package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tildesoft/workspace-mcp/internal/logging"
	"github.com/tildesoft/workspace-mcp/internal/server"
)

// ToolHandler is the handler signature mcp-go expects.
type ToolHandler = mcpserver.ToolHandlerFunc

// Instrumented wraps a tool handler with metrics and a per-invocation log
// line. Service and operation label the underlying Google API call; tools
// that call no Google API pass an empty operation.
func Instrumented(toolName, service, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := logging.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = logging.StatusError
		}

		if m := sc.Metrics(); m != nil {
			m.RecordToolInvocation(ctx, toolName, status, duration)
			if operation != "" {
				m.RecordAPIOperation(ctx, service, operation, status, duration)
			}
		}
		sc.Logger().Debug("tool invocation",
			logging.Tool(toolName),
			logging.Service(service),
			logging.Status(status),
			logging.KeyDuration, duration)

		return result, err
	}
}
