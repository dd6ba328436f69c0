package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/pharos-integrity/pharos/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the analyze_claim and analyze_claims tools to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := buildAnalyzer(cfg, logger)
		if err != nil {
			return err
		}
		database, store, err := openAudit(cfg)
		if err != nil {
			return fmt.Errorf("opening audit database: %w", err)
		}
		if database != nil {
			defer database.Close()
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		logger.Info("pharos MCP server started on stdio")

		srv := mcpserver.NewServer(analyzer, recorderFor(store), logger)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
