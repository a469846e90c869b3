package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policydesk/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list,
upload and question your policy documents.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  policydesk mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  policydesk mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "policydesk": {
        "command": "/path/to/policydesk",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

// mcpReadOnly disables the upload and delete tools.
var mcpReadOnly bool

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolVar(&mcpReadOnly, "read-only", false, "Only expose listing and questions")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	d, err := dependencies(cmd)
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Roster: d.Roster,
		Chat:   d.Chat,
	}
	if !mcpReadOnly {
		ports.Uploads = d.Uploads
		ports.Admin = d.Admin
		ports.ExpandFiles = d.ExpandFiles
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
