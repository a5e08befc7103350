// ABOUTME: Distribution command buckets source products by accepted match count
// ABOUTME: Buckets are 0, 1, 2 and 3+ matches at or above the threshold
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/catmatch/internal/analysis"
	"github.com/harper/catmatch/internal/models"
)

var (
	distributionReport        string
	distributionMinConfidence float64
)

// NewDistributionCmd creates the distribution command
func NewDistributionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Count source products by number of accepted matches",
		Long: `Bucket source products by how many of their matches are at or above
the confidence threshold: 0, 1, 2 or 3+.

Examples:
  catmatch distribution --report weighted_matches.json
  catmatch distribution --report weighted_matches.json --min-confidence 90 --format json`,
		RunE: runDistribution,
	}

	cmd.Flags().StringVar(&distributionReport, "report", "", "Match report JSON file")
	addMinConfidenceFlag(cmd, &distributionMinConfidence)
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

type distributionRow struct {
	Matches  string `json:"matches" yaml:"matches"`
	Products int    `json:"products" yaml:"products"`
}

func runDistribution(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	threshold, err := minConfidence(cmd, cfg, distributionMinConfidence)
	if err != nil {
		return err
	}

	report, err := models.LoadReport(distributionReport)
	if err != nil {
		return err
	}

	counts := analysis.Distribution(report, threshold)
	rows := make([]distributionRow, 0, len(analysis.Buckets))
	for _, b := range analysis.Buckets {
		rows = append(rows, distributionRow{Matches: b, Products: counts[b]})
	}

	out := cmd.OutOrStdout()
	if structuredOutput() {
		return writeStructured(out, rows)
	}

	w := newTable(out)
	fmt.Fprintln(w, "MATCHES\tPRODUCTS")
	fmt.Fprintln(w, "-------\t--------")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\n", r.Matches, r.Products)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(out, "\nTotal source products: %d (threshold %.0f%%)\n", len(report.WeightedMatches), threshold)
	}
	return nil
}
