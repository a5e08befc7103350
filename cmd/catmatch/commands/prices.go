// ABOUTME: Prices command compares listing prices of accepted match pairs
// ABOUTME: Normalizes to price per 500g or per piece before comparing
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/catmatch/internal/analysis"
	"github.com/harper/catmatch/internal/models"
)

var (
	pricesReport        string
	pricesSource        string
	pricesTarget        string
	pricesSourceIDField string
	pricesTargetIDField string
	pricesMinConfidence float64
)

// NewPricesCmd creates the prices command
func NewPricesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Compare normalized prices of matched products",
		Long: `Compare the prices of every accepted match pair. Prices are normalized
per 500g when both listings state a weight, otherwise per piece.

Examples:
  catmatch prices --report weighted_matches.json --source japfa.json --target licious.json
  catmatch prices --report weighted_matches.json --source japfa.json --target licious.json --format json`,
		RunE: runPrices,
	}

	cmd.Flags().StringVar(&pricesReport, "report", "", "Match report JSON file")
	cmd.Flags().StringVar(&pricesSource, "source", "", "Source catalog JSON file")
	cmd.Flags().StringVar(&pricesTarget, "target", "", "Target catalog JSON file")
	cmd.Flags().StringVar(&pricesSourceIDField, "source-id-field", models.SourceIDField, "Id field in the source catalog")
	cmd.Flags().StringVar(&pricesTargetIDField, "target-id-field", models.TargetIDField, "Id field in the target catalog")
	addMinConfidenceFlag(cmd, &pricesMinConfidence)
	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runPrices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	threshold, err := minConfidence(cmd, cfg, pricesMinConfidence)
	if err != nil {
		return err
	}

	report, err := models.LoadReport(pricesReport)
	if err != nil {
		return err
	}
	sources, err := models.LoadCatalog(pricesSource, pricesSourceIDField)
	if err != nil {
		return err
	}
	targets, err := models.LoadCatalog(pricesTarget, pricesTargetIDField)
	if err != nil {
		return err
	}

	rows := analysis.ComparePrices(report, sources.Items, targets.Items, threshold, cfg.Thresholds())

	out := cmd.OutOrStdout()
	if structuredOutput() {
		return writeStructured(out, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "No match pairs at or above %.0f%%\n", threshold)
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "SOURCE\tTARGET\tCONF\tSOURCE PRICE\tTARGET PRICE\tBASIS\tDIFF\tVERDICT")
	fmt.Fprintln(w, "------\t------\t----\t------------\t------------\t-----\t----\t-------")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(r.Source.Title, 30),
			truncate(r.Target.Title, 30),
			r.Confidence,
			formatRupees(r.Source.Price),
			formatRupees(r.Target.Price),
			r.Basis,
			formatDiff(r.DiffPercent),
			r.Verdict,
		)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(out, "\n%d match pairs compared\n", len(rows))
	}
	return nil
}

func formatRupees(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("₹%.2f", v)
}

func formatDiff(diff *float64) string {
	if diff == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *diff)
}
