// ABOUTME: Read-only analytics over a frozen match report
// ABOUTME: Threshold filtering, distribution buckets, unmatched targets, and integrity checks
package analysis

import (
	"fmt"
	"sort"

	"github.com/harper/catmatch/internal/models"
)

// Bucket labels for the match count distribution
const (
	BucketNone  = "0"
	BucketOne   = "1"
	BucketTwo   = "2"
	BucketThree = "3+"
)

// Buckets lists distribution labels in display order
var Buckets = []string{BucketNone, BucketOne, BucketTwo, BucketThree}

// LabeledMatch is a match annotated with its parsed confidence and label
type LabeledMatch struct {
	models.Match `json:",inline" yaml:",inline"`
	Value        float64 `json:"confidence_value" yaml:"confidence_value"`
	Label        string  `json:"label" yaml:"label"`
}

// SourceMatches groups the accepted matches of one source item
type SourceMatches struct {
	SourceID string                `json:"source_id" yaml:"source_id"`
	Source   models.ProductSummary `json:"source" yaml:"source"`
	Matches  []LabeledMatch        `json:"matches" yaml:"matches"`
}

// FilterMatches keeps matches with confidence >= min, in report order
func FilterMatches(entry models.ReportEntry, min float64) []models.Match {
	out := make([]models.Match, 0, len(entry.Matches))
	for _, m := range entry.Matches {
		if m.ConfidenceValue() >= min {
			out = append(out, m)
		}
	}
	return out
}

// Label annotates matches with their confidence label
func Label(matches []models.Match, th models.Thresholds) []LabeledMatch {
	out := make([]LabeledMatch, 0, len(matches))
	for _, m := range matches {
		v := m.ConfidenceValue()
		out = append(out, LabeledMatch{Match: m, Value: v, Label: th.Label(v)})
	}
	return out
}

// Partition splits source ids into those with at least one match >= min and those without.
// Both slices are sorted.
func Partition(report *models.MatchReport, min float64) (matched, unmatched []string) {
	matched = []string{}
	unmatched = []string{}
	for _, id := range report.SourceIDs() {
		if len(FilterMatches(report.WeightedMatches[id], min)) > 0 {
			matched = append(matched, id)
		} else {
			unmatched = append(unmatched, id)
		}
	}
	return matched, unmatched
}

// Matched returns labeled, thresholded matches for every source that has any, sorted by source id
func Matched(report *models.MatchReport, min float64, th models.Thresholds) []SourceMatches {
	ids, _ := Partition(report, min)
	out := make([]SourceMatches, 0, len(ids))
	for _, id := range ids {
		entry := report.WeightedMatches[id]
		out = append(out, SourceMatches{
			SourceID: id,
			Source:   entry.Source,
			Matches:  Label(FilterMatches(entry, min), th),
		})
	}
	return out
}

// Distribution counts sources by how many matches reach min, bucketed as 0, 1, 2, 3+
func Distribution(report *models.MatchReport, min float64) map[string]int {
	dist := make(map[string]int, len(Buckets))
	for _, b := range Buckets {
		dist[b] = 0
	}
	for _, entry := range report.WeightedMatches {
		switch n := len(FilterMatches(entry, min)); {
		case n == 0:
			dist[BucketNone]++
		case n == 1:
			dist[BucketOne]++
		case n == 2:
			dist[BucketTwo]++
		default:
			dist[BucketThree]++
		}
	}
	return dist
}

// Unmatched returns target items that no source matched at or above min, in catalog order.
// Items are compared by id; titles repeat across listings.
func Unmatched(report *models.MatchReport, targets []models.CatalogItem, min float64) []models.CatalogItem {
	hit := make(map[string]bool)
	for _, entry := range report.WeightedMatches {
		for _, m := range FilterMatches(entry, min) {
			hit[m.TargetID] = true
		}
	}

	out := []models.CatalogItem{}
	for _, item := range targets {
		if !hit[item.ID] {
			out = append(out, item)
		}
	}
	return out
}

// UnmatchedByCategory groups unmatched items by category, sorted by category name
func UnmatchedByCategory(items []models.CatalogItem) ([]string, map[string][]models.CatalogItem) {
	groups := make(map[string][]models.CatalogItem)
	for _, item := range items {
		cat := item.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		groups[cat] = append(groups[cat], item)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, groups
}

// VerifyReport checks that every match points at an item in the target catalog
func VerifyReport(report *models.MatchReport, targets []models.CatalogItem) error {
	if err := report.Validate(); err != nil {
		return err
	}
	ids := make(map[string]bool, len(targets))
	for _, item := range targets {
		ids[item.ID] = true
	}
	for _, sourceID := range report.SourceIDs() {
		for _, m := range report.WeightedMatches[sourceID].Matches {
			if !ids[m.TargetID] {
				return fmt.Errorf("%w: source %s matches unknown target %s", models.ErrNotFound, sourceID, m.TargetID)
			}
		}
	}
	return nil
}
