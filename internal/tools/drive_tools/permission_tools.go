package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tildesoft/workspace-mcp/internal/drive"
	"github.com/tildesoft/workspace-mcp/internal/server"
	"github.com/tildesoft/workspace-mcp/internal/tools/common"
)

func registerPermissionTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	listPermissionsTool := mcp.NewTool("drive_list_permissions",
		mcp.WithDescription("List the permissions on a Drive file"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The file ID"),
		),
	)
	s.AddTool(listPermissionsTool, common.Instrumented("drive_list_permissions", "drive", "permissions.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			fileID := common.StringArg(args, "fileId", "")
			if fileID == "" {
				return mcp.NewToolResultError("fileId is required"), nil
			}
			permissions, err := client.ListPermissions(ctx, fileID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list permissions: %v", err)), nil
			}
			return common.JSONResult(permissions), nil
		}))

	if readOnly {
		return
	}

	shareTool := mcp.NewTool("drive_share_file",
		mcp.WithDescription("Grant a permission on a Drive file"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The file ID"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Grantee type: user, group, domain, or anyone"),
		),
		mcp.WithString("role",
			mcp.Required(),
			mcp.Description("Role to grant: reader, commenter, or writer"),
		),
		mcp.WithString("emailAddress",
			mcp.Description("Grantee email (required for type user or group)"),
		),
		mcp.WithString("domain",
			mcp.Description("Grantee domain (required for type domain)"),
		),
		mcp.WithBoolean("sendNotificationEmail",
			mcp.Description("Send a notification email to the grantee (default: false)"),
		),
		mcp.WithString("emailMessage",
			mcp.Description("Message to include in the notification email"),
		),
	)
	s.AddTool(shareTool, common.Instrumented("drive_share_file", "drive", "permissions.create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			fileID := common.StringArg(args, "fileId", "")
			if fileID == "" {
				return mcp.NewToolResultError("fileId is required"), nil
			}
			permission, err := client.ShareFile(ctx, fileID, drive.ShareOptions{
				Type:                  common.StringArg(args, "type", ""),
				Role:                  common.StringArg(args, "role", ""),
				EmailAddress:          common.StringArg(args, "emailAddress", ""),
				Domain:                common.StringArg(args, "domain", ""),
				SendNotificationEmail: common.BoolArg(args, "sendNotificationEmail", false),
				EmailMessage:          common.StringArg(args, "emailMessage", ""),
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to share file: %v", err)), nil
			}
			return common.JSONResult(permission), nil
		}))

	updatePermissionTool := mcp.NewTool("drive_update_permission",
		mcp.WithDescription("Change the role of an existing permission on a Drive file"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The file ID"),
		),
		mcp.WithString("permissionId",
			mcp.Required(),
			mcp.Description("The permission ID"),
		),
		mcp.WithString("role",
			mcp.Required(),
			mcp.Description("New role: reader, commenter, or writer"),
		),
	)
	s.AddTool(updatePermissionTool, common.Instrumented("drive_update_permission", "drive", "permissions.update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			permission, err := client.UpdatePermission(ctx,
				common.StringArg(args, "fileId", ""),
				common.StringArg(args, "permissionId", ""),
				common.StringArg(args, "role", ""))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to update permission: %v", err)), nil
			}
			return common.JSONResult(permission), nil
		}))

	removePermissionTool := mcp.NewTool("drive_remove_permission",
		mcp.WithDescription("Revoke a permission from a Drive file"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The file ID"),
		),
		mcp.WithString("permissionId",
			mcp.Required(),
			mcp.Description("The permission ID"),
		),
	)
	s.AddTool(removePermissionTool, common.Instrumented("drive_remove_permission", "drive", "permissions.delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			fileID := common.StringArg(args, "fileId", "")
			permissionID := common.StringArg(args, "permissionId", "")
			if fileID == "" || permissionID == "" {
				return mcp.NewToolResultError("fileId and permissionId are required"), nil
			}
			if err := client.RemovePermission(ctx, fileID, permissionID); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to remove permission: %v", err)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Permission %s removed from %s", permissionID, fileID)), nil
		}))

	transferTool := mcp.NewTool("drive_transfer_ownership",
		mcp.WithDescription("Transfer ownership of a Drive file to another user"),
		mcp.WithString("user",
			mcp.Description("User email the call acts as. Ignored in single-user mode."),
		),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The file ID"),
		),
		mcp.WithString("newOwner",
			mcp.Required(),
			mcp.Description("Email address of the new owner"),
		),
	)
	s.AddTool(transferTool, common.Instrumented("drive_transfer_ownership", "drive", "permissions.create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, args, err := getClient(ctx, request, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			permission, err := client.TransferOwnership(ctx,
				common.StringArg(args, "fileId", ""),
				common.StringArg(args, "newOwner", ""))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to transfer ownership: %v", err)), nil
			}
			return common.JSONResult(permission), nil
		}))
}
