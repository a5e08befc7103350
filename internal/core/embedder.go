// ABOUTME: Embedder capability interface and a deterministic offline implementation
// ABOUTME: HashEmbedder produces stable pseudo-embeddings without network access
package core

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/harper/catmatch/internal/models"
)

// Embedder turns one text into an embedding vector
type Embedder interface {
	Embed(ctx context.Context, text string) (models.Vector, error)
}

// HashEmbedder is a bag-of-words feature-hashing embedder. Texts sharing tokens
// score higher, which is enough to exercise ranking offline.
type HashEmbedder struct {
	Dimension int
}

// NewHashEmbedder returns a HashEmbedder; dimension <= 0 defaults to 256
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &HashEmbedder{Dimension: dimension}
}

// Embed hashes each lower-cased token into a signed bucket and L2-normalizes
func (h *HashEmbedder) Embed(ctx context.Context, text string) (models.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make(models.Vector, h.Dimension)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		hf := fnv.New64a()
		_, _ = hf.Write([]byte(tok))
		sum := hf.Sum64()
		idx := int(sum % uint64(h.Dimension))
		sign := 1.0
		if (sum>>63)&1 == 1 {
			sign = -1.0
		}
		vec[idx] += sign
	}
	if n := Norm(vec); n > 0 {
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}
