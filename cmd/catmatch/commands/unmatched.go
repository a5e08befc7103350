// ABOUTME: Unmatched command lists target products no source product matched
// ABOUTME: Groups the result by category like the original dashboard
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/catmatch/internal/analysis"
	"github.com/harper/catmatch/internal/models"
)

var (
	unmatchedReport        string
	unmatchedTarget        string
	unmatchedTargetIDField string
	unmatchedMinConfidence float64
)

// NewUnmatchedCmd creates the unmatched command
func NewUnmatchedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unmatched",
		Short: "List target products with no accepted match",
		Long: `List target catalog products that no source product matched at or
above the confidence threshold, grouped by category.

Examples:
  catmatch unmatched --report weighted_matches.json --target licious.json
  catmatch unmatched --report weighted_matches.json --target licious.json --min-confidence 80`,
		RunE: runUnmatched,
	}

	cmd.Flags().StringVar(&unmatchedReport, "report", "", "Match report JSON file")
	cmd.Flags().StringVar(&unmatchedTarget, "target", "", "Target catalog JSON file")
	cmd.Flags().StringVar(&unmatchedTargetIDField, "target-id-field", models.TargetIDField, "Id field in the target catalog")
	addMinConfidenceFlag(cmd, &unmatchedMinConfidence)
	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

type unmatchedProduct struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Type  string `json:"type" yaml:"type"`
}

type unmatchedGroup struct {
	Category string             `json:"category" yaml:"category"`
	Products []unmatchedProduct `json:"products" yaml:"products"`
}

func runUnmatched(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	threshold, err := minConfidence(cmd, cfg, unmatchedMinConfidence)
	if err != nil {
		return err
	}

	report, err := models.LoadReport(unmatchedReport)
	if err != nil {
		return err
	}
	targets, err := models.LoadCatalog(unmatchedTarget, unmatchedTargetIDField)
	if err != nil {
		return err
	}

	items := analysis.Unmatched(report, targets.Items, threshold)
	names, byCategory := analysis.UnmatchedByCategory(items)

	out := cmd.OutOrStdout()
	if structuredOutput() {
		groups := make([]unmatchedGroup, 0, len(names))
		for _, name := range names {
			group := unmatchedGroup{Category: name, Products: make([]unmatchedProduct, 0, len(byCategory[name]))}
			for _, item := range byCategory[name] {
				group.Products = append(group.Products, unmatchedProduct{ID: item.ID, Title: item.Title, Type: item.Type})
			}
			groups = append(groups, group)
		}
		return writeStructured(out, groups)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "Every target product has a match")
		return nil
	}

	for _, name := range names {
		fmt.Fprintf(out, "%s (%d)\n", name, len(byCategory[name]))
		w := newTable(out)
		for _, item := range byCategory[name] {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", item.ID, truncate(item.Title, 60), item.Type)
		}
		w.Flush()
	}

	if !quiet {
		fmt.Fprintf(out, "\n%d of %d target products unmatched at %.0f%%\n", len(items), len(targets.Items), threshold)
	}
	return nil
}
