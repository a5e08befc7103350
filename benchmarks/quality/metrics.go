// ABOUTME: Ranking quality metrics for labeled match pairs
// ABOUTME: Deterministic precision@1, recall@k, and mean reciprocal rank over a report

package quality

import (
	"fmt"
	"sort"

	"github.com/harper/catmatch/internal/models"
)

// PassThreshold is the minimum precision@1 and recall@k for a PASS
const PassThreshold = 0.9

// MetricsCalculator scores a match report against ground truth pairs
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// rank returns the 1-based position of targetID in the source's matches, or 0
func rank(report *models.MatchReport, sourceID, targetID string) int {
	entry, ok := report.WeightedMatches[sourceID]
	if !ok {
		return 0
	}
	for i, m := range entry.Matches {
		if m.TargetID == targetID {
			return i + 1
		}
	}
	return 0
}

// CalculatePrecisionAt1 is the share of labeled sources whose first match is the expected target
func (m *MetricsCalculator) CalculatePrecisionAt1(report *models.MatchReport, expected map[string]string) (float64, []string) {
	if len(expected) == 0 {
		return 1.0, nil
	}
	misses := []string{}
	hits := 0
	for _, sourceID := range sortedKeys(expected) {
		if rank(report, sourceID, expected[sourceID]) == 1 {
			hits++
		} else {
			misses = append(misses, sourceID)
		}
	}
	return float64(hits) / float64(len(expected)), misses
}

// CalculateRecallAtK is the share of labeled sources whose expected target appears anywhere in the top-k
func (m *MetricsCalculator) CalculateRecallAtK(report *models.MatchReport, expected map[string]string) (float64, []string) {
	if len(expected) == 0 {
		return 1.0, nil
	}
	misses := []string{}
	hits := 0
	for _, sourceID := range sortedKeys(expected) {
		if rank(report, sourceID, expected[sourceID]) > 0 {
			hits++
		} else {
			misses = append(misses, sourceID)
		}
	}
	return float64(hits) / float64(len(expected)), misses
}

// CalculateMRR averages 1/rank of the expected target, counting a miss as 0
func (m *MetricsCalculator) CalculateMRR(report *models.MatchReport, expected map[string]string) float64 {
	if len(expected) == 0 {
		return 1.0
	}
	var sum float64
	for sourceID, targetID := range expected {
		if r := rank(report, sourceID, targetID); r > 0 {
			sum += 1.0 / float64(r)
		}
	}
	return sum / float64(len(expected))
}

// Evaluate computes every metric for one labeled report
func (m *MetricsCalculator) Evaluate(id, name string, report *models.MatchReport, expected map[string]string) Result {
	precision, topMisses := m.CalculatePrecisionAt1(report, expected)
	recall, recallMisses := m.CalculateRecallAtK(report, expected)
	mrr := m.CalculateMRR(report, expected)

	status := "FAIL"
	if precision >= PassThreshold && recall >= PassThreshold {
		status = "PASS"
	}

	return Result{
		ScenarioID:   id,
		ScenarioName: name,
		Labeled:      len(expected),
		PrecisionAt1: precision,
		RecallAtK:    recall,
		MRR:          mrr,
		Status:       status,
		Details: map[string]interface{}{
			"top1_misses":   topMisses,
			"recall_misses": recallMisses,
			"summary":       fmt.Sprintf("p@1 %.2f, recall@k %.2f, mrr %.2f", precision, recall, mrr),
		},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
