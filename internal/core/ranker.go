// ABOUTME: Top-k similarity ranking of target vectors for one source vector
// ABOUTME: Stable descending sort keeps ties in original target order
package core

import (
	"sort"

	"github.com/harper/catmatch/internal/models"
)

// TopK scores every target against source and returns the best min(k, len(targets))
func TopK(source models.Vector, targets []models.Vector, k int) []models.MatchCandidate {
	if k <= 0 || len(targets) == 0 {
		return []models.MatchCandidate{}
	}

	scored := make([]models.MatchCandidate, len(targets))
	for i, target := range targets {
		scored[i] = models.MatchCandidate{Index: i, Score: CosineSimilarity(source, target)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
