package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/shelltweak/internal/mcp"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.

Example:
  shelltweak mcp serve

Logs go to stderr so they never mix with protocol traffic on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			server := mcp.NewServer(a.cfg, a.bridge, mcp.Options{
				Logger: a.logger,
				Screen: screenRect(a.cfg, a.logger),
				Memo:   tiling.NewMemo(tiling.DefaultMemoSize),
			})
			return server.Run(commandContext(cmd))
		},
	})
	return cmd
}
