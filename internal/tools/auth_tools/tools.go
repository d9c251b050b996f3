// Package auth_tools registers the session management MCP tools.
package auth_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tildesoft/workspace-mcp/internal/server"
	"github.com/tildesoft/workspace-mcp/internal/tools/common"
)

// RegisterAuthTools registers the session tools. They are registered in
// every configuration: authorization gates the rest of the tool surface,
// and revocation must work even on a read-only server.
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	statusTool := mcp.NewTool("auth_status",
		mcp.WithDescription("Report whether the acting user has an authorized session"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
	)
	s.AddTool(statusTool, common.Instrumented("auth_status", "auth", "", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			user, err := sc.ResolveUser(request.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return common.JSONResult(map[string]interface{}{
				"user":       user,
				"authorized": sc.HasSession(user),
			}), nil
		}))

	revokeTool := mcp.NewTool("auth_revoke",
		mcp.WithDescription("Revoke the acting user's session; a new authorization is required afterwards"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
	)
	s.AddTool(revokeTool, common.Instrumented("auth_revoke", "auth", "", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			user, err := sc.ResolveUser(request.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if !sc.HasSession(user) {
				return mcp.NewToolResultError(fmt.Sprintf("no session for %s", user)), nil
			}
			sc.RevokeSession(user)
			return mcp.NewToolResultText(fmt.Sprintf("Session for %s revoked. Authorize again to continue.", user)), nil
		}))

	return nil
}
