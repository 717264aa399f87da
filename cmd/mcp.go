package cmd

import (
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the PagePulse MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents trigger audits and read history, dashboards and business impact.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs must stay off stdout, which carries the protocol.
		return setupWith(contract.Needs{Provider: true, User: true})(cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, newAuditor())
	},
}
