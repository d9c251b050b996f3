// Package drive_tools registers the Google Drive MCP tools.
package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tildesoft/workspace-mcp/internal/drive"
	"github.com/tildesoft/workspace-mcp/internal/server"
)

func getClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*drive.Client, map[string]interface{}, error) {
	args := request.GetArguments()
	user, err := sc.ResolveUser(args)
	if err != nil {
		return nil, nil, err
	}
	client, err := sc.DriveClientForUser(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return client, args, nil
}

// RegisterDriveTools registers the Drive tool group. Write and sharing
// tools are skipped in read-only mode.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerFileTools(s, sc, readOnly)
	registerPermissionTools(s, sc, readOnly)
	return nil
}
