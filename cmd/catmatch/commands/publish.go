// ABOUTME: Publish, fetch and reports commands share match reports through Charm KV
// ABOUTME: Reports sync across machines linked to the same Charm account
package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/catmatch/internal/charm"
	"github.com/harper/catmatch/internal/config"
	"github.com/harper/catmatch/internal/models"
)

// openReportStore opens the Charm KV client; tests replace it with an in-memory store
var openReportStore = func(cfg *config.Config) (*charm.Client, error) {
	return charm.NewClient(&charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
}

var (
	publishReport string
	publishName   string
	publishRunID  string
	fetchName     string
	fetchOut      string
)

// NewPublishCmd creates the publish command
func NewPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Push a match report to Charm KV",
		Long: `Push a match report to Charm KV so other machines can fetch it.

The name defaults to the report file name without its extension.

Examples:
  catmatch publish --report weighted_matches.json
  catmatch publish --report weighted_matches.json --name weekly`,
		RunE: runPublish,
	}

	cmd.Flags().StringVar(&publishReport, "report", "", "Match report JSON file")
	cmd.Flags().StringVar(&publishName, "name", "", "Published report name")
	cmd.Flags().StringVar(&publishRunID, "run-id", "", "Run id to store with the report")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	report, err := models.LoadReport(publishReport)
	if err != nil {
		return err
	}

	name := publishName
	if name == "" {
		base := filepath.Base(publishReport)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	client, err := openReportStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Charm: %w", err)
	}
	defer client.Close()

	meta, err := client.PublishReport(name, publishRunID, report)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if structuredOutput() {
		return writeStructured(out, meta)
	}
	fmt.Fprintf(out, "Published %q (%d source products, %d matches)\n", meta.Name, meta.Sources, meta.Matches)
	return nil
}

// NewFetchCmd creates the fetch command
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Pull a published match report from Charm KV",
		Long: `Pull a published match report from Charm KV and write it to a file.

Examples:
  catmatch fetch --name weekly --out weekly.json`,
		RunE: runFetch,
	}

	cmd.Flags().StringVar(&fetchName, "name", "", "Published report name")
	cmd.Flags().StringVar(&fetchOut, "out", "", "Output path (default <name>.json)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := openReportStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Charm: %w", err)
	}
	defer client.Close()

	report, err := client.FetchReport(fetchName)
	if err != nil {
		return err
	}

	path := fetchOut
	if path == "" {
		path = fetchName + ".json"
	}
	if err := report.WriteFile(path); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %q to %s (%d source products)\n", fetchName, path, len(report.WeightedMatches))
	}
	return nil
}

// NewReportsCmd creates the reports command
func NewReportsCmd() *cobra.Command {
	var remove string

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List or delete published match reports",
		Long: `List match reports published to Charm KV, sorted by name.

Examples:
  catmatch reports
  catmatch reports --delete weekly`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := openReportStore(cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			if remove != "" {
				if err := client.DeleteReport(remove); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %q\n", remove)
				return nil
			}

			metas, err := client.ListReports()
			if err != nil {
				return err
			}
			if structuredOutput() {
				return writeStructured(out, metas)
			}
			if len(metas) == 0 {
				fmt.Fprintln(out, "No published reports")
				return nil
			}

			w := newTable(out)
			fmt.Fprintln(w, "NAME\tSOURCES\tMATCHES\tPUBLISHED")
			fmt.Fprintln(w, "----\t-------\t-------\t---------")
			for _, m := range metas {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", m.Name, m.Sources, m.Matches, formatTime(m.PublishedAt))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&remove, "delete", "", "Delete the named report")

	return cmd
}
