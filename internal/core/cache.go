// ABOUTME: Embedding cache interface and caching Embedder decorator
// ABOUTME: Identical preprocessed texts are embedded once per model
package core

import (
	"context"
	"sync"

	"github.com/harper/catmatch/internal/models"
	"github.com/rs/zerolog"
)

// EmbeddingCache stores vectors by model and exact input text
type EmbeddingCache interface {
	Get(model, text string) (models.Vector, bool, error)
	Put(model, text string, vec models.Vector) error
}

// MemoryCache is an in-process EmbeddingCache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.Vector
}

// NewMemoryCache creates an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]models.Vector)}
}

func memoryKey(model, text string) string {
	return model + "\x00" + text
}

// Get returns a cached vector
func (c *MemoryCache) Get(model, text string) (models.Vector, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.entries[memoryKey(model, text)]
	return vec, ok, nil
}

// Put stores a vector
func (c *MemoryCache) Put(model, text string, vec models.Vector) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[memoryKey(model, text)] = vec
	return nil
}

// Len returns the number of cached vectors
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CachingEmbedder consults cache before calling next; only successes are stored
type CachingEmbedder struct {
	next   Embedder
	cache  EmbeddingCache
	model  string
	logger zerolog.Logger

	mu     sync.Mutex
	hits   int
	misses int
}

// NewCachingEmbedder wraps next with cache under the given model name
func NewCachingEmbedder(next Embedder, cache EmbeddingCache, model string, logger zerolog.Logger) *CachingEmbedder {
	return &CachingEmbedder{next: next, cache: cache, model: model, logger: logger}
}

// Embed returns the cached vector or embeds and stores it. Cache read and
// write failures are logged and treated as misses.
func (c *CachingEmbedder) Embed(ctx context.Context, text string) (models.Vector, error) {
	vec, ok, err := c.cache.Get(c.model, text)
	if err != nil {
		c.logger.Warn().Err(err).Msg("embedding cache read failed")
	}
	if ok {
		c.count(true)
		return vec, nil
	}
	c.count(false)

	vec, err = c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(c.model, text, vec); err != nil {
		c.logger.Warn().Err(err).Msg("embedding cache write failed")
	}
	return vec, nil
}

func (c *CachingEmbedder) count(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// Stats returns cache hits and misses so far
func (c *CachingEmbedder) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
