package cmd

import (
	"github.com/huangsam/repostats/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path-or-url...]",
	Short: "Start the repostats MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents analyze repositories and
classify files via standard tools.

The repositories given here are the default for analyze_repository calls that
omit repo_path. Logs go to stderr since stdout carries the protocol.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
