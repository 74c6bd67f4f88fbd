package cmd

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/jvillaverde/missionforge/internal/mcpserver"
	"github.com/jvillaverde/missionforge/internal/store"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve the mission-decomposition pipeline as MCP tools over stdio",
	RunE:  runServeMCP,
}

func init() {
	rootCmd.AddCommand(serveMCPCmd)
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	hist, err := store.Open(cfg.RunHistoryDBPath)
	if err != nil {
		return err
	}
	defer hist.Close()

	server := mcpserver.NewServer(mcpserver.Deps{FS: fs, History: hist}, version)
	return server.Run(context.Background(), mcp.NewStdioTransport())
}
