// ABOUTME: Main entry point for the catmatch MCP server with stdio transport
// ABOUTME: Loads a match report and optional catalogs named by environment variables
package main

import (
	"fmt"
	"os"

	"github.com/harper/catmatch/internal/config"
	"github.com/harper/catmatch/internal/logging"
	"github.com/harper/catmatch/internal/mcp"
	"github.com/harper/catmatch/internal/models"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closer := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closer.Close()
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file found")
	}

	dataset, err := loadDataset(os.Getenv, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load dataset")
		closer.Close()
		os.Exit(1)
	}

	server := mcpserver.NewMCPServer(mcp.ServerName, "0.1.0")
	mcp.RegisterTools(server, dataset)

	logStartup(logger, dataset)
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Error().Err(err).Msg("server error")
		closer.Close()
		os.Exit(1)
	}
}

// loadDataset reads CATMATCH_REPORT plus the optional CATMATCH_SOURCE and CATMATCH_TARGET catalogs
func loadDataset(getenv func(string) string, cfg *config.Config) (*mcp.Dataset, error) {
	reportPath := getenv("CATMATCH_REPORT")
	if reportPath == "" {
		reportPath = "weighted_matches.json"
	}
	report, err := models.LoadReport(reportPath)
	if err != nil {
		return nil, fmt.Errorf("loading report: %w", err)
	}

	dataset := &mcp.Dataset{Report: report, Thresholds: cfg.Thresholds()}
	if path := getenv("CATMATCH_SOURCE"); path != "" {
		sources, err := models.LoadCatalog(path, models.SourceIDField)
		if err != nil {
			return nil, fmt.Errorf("loading source catalog: %w", err)
		}
		dataset.Sources = sources.Items
	}
	if path := getenv("CATMATCH_TARGET"); path != "" {
		targets, err := models.LoadCatalog(path, models.TargetIDField)
		if err != nil {
			return nil, fmt.Errorf("loading target catalog: %w", err)
		}
		dataset.Targets = targets.Items
	}
	return dataset, nil
}

func logStartup(logger zerolog.Logger, dataset *mcp.Dataset) {
	logger.Info().
		Int("sources", len(dataset.Report.WeightedMatches)).
		Bool("catalogs", dataset.Sources != nil && dataset.Targets != nil).
		Msg("catmatch MCP server starting on stdio")
}
