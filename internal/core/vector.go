// ABOUTME: Vector math for embedding combination and similarity
// ABOUTME: Zero-norm and mismatched vectors score 0 instead of faulting
package core

import (
	"math"

	"github.com/harper/catmatch/internal/models"
)

// Norm returns the L2 norm
func Norm(v models.Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length; a zero vector is returned unchanged
func Normalize(v models.Vector) models.Vector {
	n := Norm(v)
	out := make(models.Vector, len(v))
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b models.Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	sim := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push parallel vectors just past the bounds
	return math.Max(-1, math.Min(1, sim))
}
