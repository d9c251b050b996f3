// Package docs_tools registers the Google Docs MCP tools.
package docs_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tildesoft/workspace-mcp/internal/docs"
	"github.com/tildesoft/workspace-mcp/internal/server"
	"github.com/tildesoft/workspace-mcp/internal/tools/common"
)

func getClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*docs.Client, map[string]interface{}, error) {
	args := request.GetArguments()
	user, err := sc.ResolveUser(args)
	if err != nil {
		return nil, nil, err
	}
	client, err := sc.DocsClientForUser(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return client, args, nil
}

// RegisterDocsTools registers the Docs tool group. Write tools are skipped
// in read-only mode.
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getContentTool := mcp.NewTool("docs_get_content",
		mcp.WithDescription("Read a Google Doc as plain text"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The document ID"),
		),
	)
	s.AddTool(getContentTool, common.Instrumented("docs_get_content", "docs", "documents.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			documentID := common.StringArg(args, "documentId", "")
			if documentID == "" {
				return mcp.NewToolResultError("documentId is required"), nil
			}
			content, err := client.GetDocContent(ctx, documentID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to read document: %v", err)), nil
			}
			return mcp.NewToolResultText(content.Text), nil
		}))

	if readOnly {
		return nil
	}

	createTool := mcp.NewTool("docs_create",
		mcp.WithDescription("Create a Google Doc, optionally with initial content"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The document title"),
		),
		mcp.WithString("content",
			mcp.Description("Initial body text"),
		),
	)
	s.AddTool(createTool, common.Instrumented("docs_create", "docs", "documents.create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title := common.StringArg(args, "title", "")
			if title == "" {
				return mcp.NewToolResultError("title is required"), nil
			}
			info, err := client.CreateDoc(ctx, title, common.StringArg(args, "content", ""))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to create document: %v", err)), nil
			}
			return common.JSONResult(info), nil
		}))

	insertTextTool := mcp.NewTool("docs_insert_text",
		mcp.WithDescription("Insert text into a Google Doc at an index (1 = start of body)"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The document ID"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to insert"),
		),
		mcp.WithNumber("index",
			mcp.Description("Insertion index (default: 1)"),
		),
	)
	s.AddTool(insertTextTool, common.Instrumented("docs_insert_text", "docs", "documents.batchUpdate", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			documentID := common.StringArg(args, "documentId", "")
			text := common.StringArg(args, "text", "")
			if documentID == "" || text == "" {
				return mcp.NewToolResultError("documentId and text are required"), nil
			}
			if err := client.InsertText(ctx, documentID, text, common.Int64Arg(args, "index", 1)); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to insert text: %v", err)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Text inserted into document %s", documentID)), nil
		}))

	return nil
}
