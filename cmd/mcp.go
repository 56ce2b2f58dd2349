package cmd

import (
	"github.com/huangsam/co2plot/internal/history"
	"github.com/huangsam/co2plot/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the co2plot MCP server",
	Long:    `Launch an MCP server that lets AI agents validate plot configurations and summarize windows via standard tools.`,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, history.Manager)
	},
}
