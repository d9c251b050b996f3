package drive_tools

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tildesoft/workspace-mcp/internal/drive"
	"github.com/tildesoft/workspace-mcp/internal/server"
	"github.com/tildesoft/workspace-mcp/internal/tools/common"
)

func registerFileTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	searchTool := mcp.NewTool("drive_search_files",
		mcp.WithDescription("Search Google Drive. Accepts free text or Drive query syntax (e.g. \"name contains 'report'\")."),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free text or a Drive query expression"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of files to return (default: 25)"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Page token from a previous search"),
		),
		mcp.WithString("orderBy",
			mcp.Description("Sort order (e.g. 'modifiedTime desc,name')"),
		),
		mcp.WithString("driveId",
			mcp.Description("Shared drive to search instead of My Drive"),
		),
	)
	s.AddTool(searchTool, common.Instrumented("drive_search_files", "drive", "files.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			query := common.StringArg(args, "query", "")
			if query == "" {
				return mcp.NewToolResultError("query is required"), nil
			}
			files, nextPageToken, err := client.SearchFiles(ctx, drive.SearchOptions{
				Query:     query,
				PageSize:  common.Int64Arg(args, "pageSize", 25),
				PageToken: common.StringArg(args, "pageToken", ""),
				OrderBy:   common.StringArg(args, "orderBy", ""),
				DriveID:   common.StringArg(args, "driveId", ""),
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to search files: %v", err)), nil
			}
			return common.JSONResult(map[string]interface{}{
				"files":         files,
				"nextPageToken": nextPageToken,
			}), nil
		}))

	listItemsTool := mcp.NewTool("drive_list_items",
		mcp.WithDescription("List the items in a Drive folder"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("folderId",
			mcp.Description("Folder ID (default: 'root')"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of items to return (default: 100)"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Page token from a previous listing"),
		),
	)
	s.AddTool(listItemsTool, common.Instrumented("drive_list_items", "drive", "files.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			files, nextPageToken, err := client.ListFolderItems(ctx,
				common.StringArg(args, "folderId", "root"),
				common.Int64Arg(args, "pageSize", 100),
				common.StringArg(args, "pageToken", ""))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list folder items: %v", err)), nil
			}
			return common.JSONResult(map[string]interface{}{
				"files":         files,
				"nextPageToken": nextPageToken,
			}), nil
		}))

	getContentTool := mcp.NewTool("drive_get_content",
		mcp.WithDescription("Read a file's content. Native Google files are exported as text; binary files report metadata only."),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The file ID"),
		),
	)
	s.AddTool(getContentTool, common.Instrumented("drive_get_content", "drive", "files.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			fileID := common.StringArg(args, "fileId", "")
			if fileID == "" {
				return mcp.NewToolResultError("fileId is required"), nil
			}
			content, err := client.GetFileContent(ctx, fileID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to read file: %v", err)), nil
			}
			if content.Binary {
				return common.JSONResult(content), nil
			}
			return mcp.NewToolResultText(content.Text), nil
		}))

	if readOnly {
		return
	}

	createTool := mcp.NewTool("drive_create_file",
		mcp.WithDescription("Create a file in Google Drive from inline content or a source URL"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The file name"),
		),
		mcp.WithString("content",
			mcp.Description("File content (plain text, or base64 with isBase64)"),
		),
		mcp.WithString("sourceUrl",
			mcp.Description("URL to fetch the file content from instead of inline content"),
		),
		mcp.WithBoolean("isBase64",
			mcp.Description("Whether content is base64-encoded (default: false)"),
		),
		mcp.WithString("folderId",
			mcp.Description("Parent folder ID (default: My Drive root)"),
		),
		mcp.WithString("mimeType",
			mcp.Description("MIME type of the file (e.g. 'text/plain')"),
		),
	)
	s.AddTool(createTool, common.Instrumented("drive_create_file", "drive", "files.create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			name := common.StringArg(args, "name", "")
			if name == "" {
				return mcp.NewToolResultError("name is required"), nil
			}

			opts := drive.CreateOptions{
				SourceURL: common.StringArg(args, "sourceUrl", ""),
				FolderID:  common.StringArg(args, "folderId", ""),
				MimeType:  common.StringArg(args, "mimeType", ""),
			}
			if content := common.StringArg(args, "content", ""); content != "" {
				if common.BoolArg(args, "isBase64", false) {
					decoded, err := base64.StdEncoding.DecodeString(content)
					if err != nil {
						return mcp.NewToolResultError(fmt.Sprintf("Failed to decode base64 content: %v", err)), nil
					}
					opts.Content = decoded
				} else {
					opts.Content = []byte(content)
				}
			}

			info, err := client.CreateFile(ctx, name, opts)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to create file: %v", err)), nil
			}
			return common.JSONResult(info), nil
		}))
}
