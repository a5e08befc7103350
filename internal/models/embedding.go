// ABOUTME: Embedding vector type and ranking candidate structures
// ABOUTME: Vectors are transient and never persisted outside the embedding cache
package models

import "fmt"

// Vector is a fixed-length embedding as returned by the provider
type Vector []float64

// ValidateDimension checks the vector is non-empty and has the expected length
func (v Vector) ValidateDimension(expected int) error {
	if len(v) == 0 {
		return fmt.Errorf("embedding vector cannot be empty")
	}
	if len(v) != expected {
		return fmt.Errorf("embedding dimension mismatch: expected %d, got %d", expected, len(v))
	}
	return nil
}

// MatchCandidate is one ranked target for a source item
type MatchCandidate struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}
