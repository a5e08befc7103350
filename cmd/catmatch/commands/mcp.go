// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Lets LLM agents query a match report over stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/catmatch/internal/mcp"
	"github.com/harper/catmatch/internal/models"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var (
	mcpReport        string
	mcpSource        string
	mcpTarget        string
	mcpSourceIDField string
	mcpTargetIDField string
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs catmatch as an MCP (Model Context Protocol) server, letting
LLM agents like Claude query a match report via stdio. The report
is loaded once; catalogs are optional and enable the unmatched and
price tools.`,
		RunE: runMCP,
		Example: `  # Serve a report (typically called by Claude Desktop)
  catmatch mcp --report weighted_matches.json --source japfa.json --target licious.json

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "catmatch": {
  #       "command": "catmatch",
  #       "args": ["mcp", "--report", "/path/to/weighted_matches.json"]
  #     }
  #   }
  # }`,
	}

	cmd.Flags().StringVar(&mcpReport, "report", "weighted_matches.json", "Match report JSON file")
	cmd.Flags().StringVar(&mcpSource, "source", "", "Source catalog JSON file")
	cmd.Flags().StringVar(&mcpTarget, "target", "", "Target catalog JSON file")
	cmd.Flags().StringVar(&mcpSourceIDField, "source-id-field", models.SourceIDField, "Id field in the source catalog")
	cmd.Flags().StringVar(&mcpTargetIDField, "target-id-field", models.TargetIDField, "Id field in the target catalog")

	return cmd
}

// loadDataset reads the report and whichever catalogs were given
func loadDataset(reportPath, sourcePath, targetPath, sourceIDField, targetIDField string, th models.Thresholds) (*mcp.Dataset, error) {
	report, err := models.LoadReport(reportPath)
	if err != nil {
		return nil, err
	}
	dataset := &mcp.Dataset{Report: report, Thresholds: th}

	if sourcePath != "" {
		sources, err := models.LoadCatalog(sourcePath, sourceIDField)
		if err != nil {
			return nil, err
		}
		dataset.Sources = sources.Items
	}
	if targetPath != "" {
		targets, err := models.LoadCatalog(targetPath, targetIDField)
		if err != nil {
			return nil, err
		}
		dataset.Targets = targets.Items
	}
	return dataset, nil
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer := newLogger(cmd, cfg)
	defer closer.Close()

	dataset, err := loadDataset(mcpReport, mcpSource, mcpTarget, mcpSourceIDField, mcpTargetIDField, cfg.Thresholds())
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer(mcp.ServerName, versionInfo.Version)
	mcp.RegisterTools(server, dataset)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("report", mcpReport).
		Int("sources", len(dataset.Report.WeightedMatches)).
		Bool("catalogs", dataset.Sources != nil && dataset.Targets != nil).
		Msg("catmatch MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
