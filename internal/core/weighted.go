// ABOUTME: Weighted multi-field product embedding (title, type, description)
// ABOUTME: Each field is preprocessed, embedded separately, combined, and renormalized
package core

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/harper/catmatch/internal/models"
	"github.com/harper/catmatch/internal/textprep"
)

// weightTolerance is how far the weight sum may drift from 1.0
const weightTolerance = 1e-9

// Weights are the per-field coefficients of the combined embedding
type Weights struct {
	Title       float64 `json:"title" yaml:"title"`
	Type        float64 `json:"type" yaml:"type"`
	Description float64 `json:"description" yaml:"description"`
}

// DefaultWeights returns 0.5 title, 0.3 type, 0.2 description
func DefaultWeights() Weights {
	return Weights{Title: 0.5, Type: 0.3, Description: 0.2}
}

// Validate rejects negative weights and sums other than 1.0
func (w Weights) Validate() error {
	for name, v := range map[string]float64{"title": w.Title, "type": w.Type, "description": w.Description} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s weight %v outside [0,1]", models.ErrConfiguration, name, v)
		}
	}
	if sum := w.Title + w.Type + w.Description; math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1.0", models.ErrConfiguration, sum)
	}
	return nil
}

// WeightedEmbedder builds one combined vector per catalog item
type WeightedEmbedder struct {
	embedder     Embedder
	preprocessor *textprep.Preprocessor
	weights      Weights
}

// NewWeightedEmbedder validates weights up front so no call is made with a bad config
func NewWeightedEmbedder(embedder Embedder, preprocessor *textprep.Preprocessor, weights Weights) (*WeightedEmbedder, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &WeightedEmbedder{embedder: embedder, preprocessor: preprocessor, weights: weights}, nil
}

// EmbedItem embeds title, type label, and description and combines them.
// Empty optional fields contribute nothing; an item without a title is rejected.
func (w *WeightedEmbedder) EmbedItem(ctx context.Context, item models.CatalogItem) (models.Vector, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	typeLabel := ""
	if strings.TrimSpace(item.Type) != "" {
		typeLabel = item.ProductType().Label()
	}

	fields := []struct {
		text   string
		weight float64
	}{
		{item.Title, w.weights.Title},
		{typeLabel, w.weights.Type},
		{item.Description, w.weights.Description},
	}

	vecs := make([]models.Vector, len(fields))
	for i, f := range fields {
		if f.weight == 0 || strings.TrimSpace(f.text) == "" {
			continue
		}
		vec, err := w.embedder.Embed(ctx, w.preprocessor.Process(f.text))
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}

	return w.Combine(vecs[0], vecs[1], vecs[2])
}

// Combine computes wt*title + wy*type + wd*desc and normalizes to unit length.
// Nil vectors are skipped; mismatched dimensions are a provider fault.
func (w *WeightedEmbedder) Combine(title, typ, desc models.Vector) (models.Vector, error) {
	parts := []struct {
		vec    models.Vector
		weight float64
	}{
		{title, w.weights.Title},
		{typ, w.weights.Type},
		{desc, w.weights.Description},
	}

	var combined models.Vector
	for _, p := range parts {
		if p.vec == nil {
			continue
		}
		if combined == nil {
			combined = make(models.Vector, len(p.vec))
		}
		if len(p.vec) != len(combined) {
			return nil, &models.ProviderError{
				Body: fmt.Sprintf("embedding dimension mismatch: %d vs %d", len(p.vec), len(combined)),
			}
		}
		for i, x := range p.vec {
			combined[i] += p.weight * x
		}
	}

	if combined == nil {
		return nil, fmt.Errorf("%w: no embeddable fields", models.ErrMissingField)
	}
	return Normalize(combined), nil
}
