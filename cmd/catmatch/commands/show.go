// ABOUTME: Show command lists accepted matches from a saved report
// ABOUTME: Filters by minimum confidence and labels each match by the dashboard cutoffs
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/catmatch/internal/analysis"
	"github.com/harper/catmatch/internal/config"
	"github.com/harper/catmatch/internal/models"
)

var (
	showMinConfidence float64
	showSourceID      string
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <report>",
		Short: "List matches at or above a confidence threshold",
		Long: `List matches from a report whose confidence is at or above the
threshold, labeled Exact Match, Best Match or Similar Product.

Examples:
  catmatch show weighted_matches.json
  catmatch show weighted_matches.json --min-confidence 90
  catmatch show weighted_matches.json --source-id J42 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	addMinConfidenceFlag(cmd, &showMinConfidence)
	cmd.Flags().StringVar(&showSourceID, "source-id", "", "Only show one source product")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	threshold, err := minConfidence(cmd, cfg, showMinConfidence)
	if err != nil {
		return err
	}

	report, err := models.LoadReport(args[0])
	if err != nil {
		return err
	}

	th := cfg.Thresholds()
	var groups []analysis.SourceMatches
	if showSourceID != "" {
		entry, err := report.Entry(showSourceID)
		if err != nil {
			return err
		}
		groups = []analysis.SourceMatches{{
			SourceID: showSourceID,
			Source:   entry.Source,
			Matches:  analysis.Label(analysis.FilterMatches(entry, threshold), th),
		}}
	} else {
		groups = analysis.Matched(report, threshold, th)
	}

	out := cmd.OutOrStdout()
	if structuredOutput() {
		return writeStructured(out, groups)
	}

	if len(groups) == 0 {
		fmt.Fprintf(out, "No matches at or above %.0f%%\n", threshold)
		return nil
	}

	for _, g := range groups {
		fmt.Fprintf(out, "%s  %s [%s]\n", g.SourceID, g.Source.Title, g.Source.Type)
		if len(g.Matches) == 0 {
			fmt.Fprintln(out, "  (no matches above threshold)")
			continue
		}
		w := newTable(out)
		for _, m := range g.Matches {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", m.Confidence, m.Label, m.TargetID, truncate(m.Title, 60))
		}
		w.Flush()
	}

	if !quiet {
		fmt.Fprintf(out, "\n%d source products with matches at or above %.0f%%\n", len(groups), threshold)
	}
	return nil
}

// addMinConfidenceFlag registers --min-confidence; unset means the configured match threshold
func addMinConfidenceFlag(cmd *cobra.Command, target *float64) {
	cmd.Flags().Float64Var(target, "min-confidence", 0, "Minimum confidence percent (default from CATMATCH_THRESHOLD_MATCH)")
}

// minConfidence returns the flag value when set, otherwise the configured match threshold
func minConfidence(cmd *cobra.Command, cfg *config.Config, value float64) (float64, error) {
	if !cmd.Flags().Changed("min-confidence") {
		return cfg.ThresholdMatch, nil
	}
	if err := validatePercent(value, "min-confidence"); err != nil {
		return 0, err
	}
	return value, nil
}
