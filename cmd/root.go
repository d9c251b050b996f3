package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the workspace-mcp application
var rootCmd = &cobra.Command{
	Use:   "workspace-mcp",
	Short: "MCP server for Google Workspace (Calendar, Drive, Docs)",
	Long: `workspace-mcp is an MCP (Model Context Protocol) server that exposes
Google Workspace tools to AI assistants.

Tool groups (Calendar, Drive, Docs) are selected at startup and determine
which OAuth scopes the server requests. Authorization happens through the
standard Google OAuth flow; the server exchanges callback codes for
credentials and keeps them in memory for the lifetime of the process.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "workspace-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("workspace-mcp version %s\n", version)
		},
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
