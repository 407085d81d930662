package cmd

import (
	"github.com/huangsam/fm301check/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the FM301 MCP server",
	Long:  `Launch an MCP server on stdio that allows AI agents to validate and inspect radar files via standard tools.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Stdio carries the protocol; tool handlers suppress their headers.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyManager, logger)
	},
}
