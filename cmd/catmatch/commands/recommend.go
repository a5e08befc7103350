// ABOUTME: Recommend command suggests source prices against the best matched competitor
// ABOUTME: Flags pairs whose per-unit gap leaves a premium opportunity or needs adjusting
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/catmatch/internal/analysis"
	"github.com/harper/catmatch/internal/models"
)

var (
	recommendReport        string
	recommendSource        string
	recommendTarget        string
	recommendSourceIDField string
	recommendTargetIDField string
	recommendMinConfidence float64
	recommendMargin        float64
	recommendBand          float64
)

// NewRecommendCmd creates the recommend command
func NewRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend source prices from matched competitor listings",
		Long: `Recommend a price for every source product against its best accepted match.
The target price is margin times the competitor's price per 500g (or per piece),
scaled to the source pack size. Prices within 5% of it are kept; increases stop at
the regular price and decreases stop at half of it.

Pairs whose per-unit gap exceeds --band percent are listed as premium
opportunities (source cheaper) or adjustments (source dearer).

Examples:
  catmatch recommend --report weighted_matches.json --source japfa.json --target licious.json
  catmatch recommend --report weighted_matches.json --source japfa.json --target licious.json --margin 0.9 --format json`,
		RunE: runRecommend,
	}

	cmd.Flags().StringVar(&recommendReport, "report", "", "Match report JSON file")
	cmd.Flags().StringVar(&recommendSource, "source", "", "Source catalog JSON file")
	cmd.Flags().StringVar(&recommendTarget, "target", "", "Target catalog JSON file")
	cmd.Flags().StringVar(&recommendSourceIDField, "source-id-field", models.SourceIDField, "Id field in the source catalog")
	cmd.Flags().StringVar(&recommendTargetIDField, "target-id-field", models.TargetIDField, "Id field in the target catalog")
	cmd.Flags().Float64Var(&recommendMargin, "margin", analysis.DefaultMarginFactor, "Fraction of the competitor's per-unit price to aim for")
	cmd.Flags().Float64Var(&recommendBand, "band", analysis.DefaultOpportunityBand, "Per-unit gap percent that flags an opportunity")
	addMinConfidenceFlag(cmd, &recommendMinConfidence)
	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

type recommendResult struct {
	Recommendations []analysis.PriceRecommendation `json:"recommendations" yaml:"recommendations"`
	Opportunities   analysis.Opportunities         `json:"opportunities" yaml:"opportunities"`
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	threshold, err := minConfidence(cmd, cfg, recommendMinConfidence)
	if err != nil {
		return err
	}
	if !(recommendMargin > 0 && recommendMargin <= 2) {
		return fmt.Errorf("%w: --margin must be in (0, 2], got %g", models.ErrConfiguration, recommendMargin)
	}
	if err := validatePercent(recommendBand, "--band"); err != nil {
		return fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}

	report, err := models.LoadReport(recommendReport)
	if err != nil {
		return err
	}
	sources, err := models.LoadCatalog(recommendSource, recommendSourceIDField)
	if err != nil {
		return err
	}
	targets, err := models.LoadCatalog(recommendTarget, recommendTargetIDField)
	if err != nil {
		return err
	}

	recs := analysis.RecommendPrices(report, sources.Items, targets.Items, threshold, recommendMargin)
	opps := analysis.GroupOpportunities(recs, recommendBand)

	out := cmd.OutOrStdout()
	if structuredOutput() {
		return writeStructured(out, recommendResult{Recommendations: recs, Opportunities: opps})
	}

	if len(recs) == 0 {
		fmt.Fprintf(out, "No match pairs at or above %.0f%%\n", threshold)
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "SOURCE\tTARGET\tCURRENT\tCOMPETITOR\tOPTIMAL\tNEW\tGAP\tACTION")
	fmt.Fprintln(w, "------\t------\t-------\t----------\t-------\t---\t---\t------")
	for _, r := range recs {
		optimal := 0.0
		if r.OptimalPrice != nil {
			optimal = *r.OptimalPrice
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(r.Source.Title, 30),
			truncate(r.Target.Title, 30),
			formatRupees(r.Source.Price),
			formatRupees(r.CompetitorPrice),
			formatRupees(optimal),
			formatRupees(r.NewPrice),
			formatDiff(r.GapPercent),
			r.Action,
		)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(out, "\n%d recommendations: %d premium opportunities, %d need adjusting (band %.0f%%)\n",
			len(recs), len(opps.Premium), len(opps.Adjust), recommendBand)
	}
	return nil
}
