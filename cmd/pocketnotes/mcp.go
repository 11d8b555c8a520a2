package main

import (
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long:  `Serve the notes tools over stdio for AI agents, using the stored session.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(mcp.Config{
			API:     apiClient,
			Session: sessionStore,
			Logger:  logger,
			Version: version,
		})
		if err != nil {
			return err
		}
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
