// ABOUTME: Persistent embedding cache backed by SQLite
// ABOUTME: Stores vectors as little-endian float64 BLOBs keyed by model and text hash
package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/harper/catmatch/internal/models"
)

// EmbeddingCache persists embeddings between match runs
type EmbeddingCache struct {
	db *DB
}

// NewEmbeddingCache creates a new EmbeddingCache
func NewEmbeddingCache(db *DB) *EmbeddingCache {
	return &EmbeddingCache{db: db}
}

// TextHash returns the cache key for an input text
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector for model and text
func (c *EmbeddingCache) Get(model, text string) (models.Vector, bool, error) {
	var (
		blob      []byte
		dimension int
	)
	err := c.db.QueryRow(`
		SELECT vector, dimension
		FROM embedding_cache
		WHERE model = ? AND text_hash = ?
	`, model, TextHash(text)).Scan(&blob, &dimension)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached embedding: %w", err)
	}

	vec := blobToVector(blob)
	if err := vec.ValidateDimension(dimension); err != nil {
		return nil, false, fmt.Errorf("corrupt cache row: %w", err)
	}
	return vec, true, nil
}

// Put stores a vector, replacing any previous entry for the same key
func (c *EmbeddingCache) Put(model, text string, vec models.Vector) error {
	if len(vec) == 0 {
		return fmt.Errorf("refusing to cache empty vector")
	}

	_, err := c.db.Exec(`
		INSERT INTO embedding_cache (model, text_hash, text, dimension, vector, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(model, text_hash) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			created_at = excluded.created_at
	`, model, TextHash(text), text, len(vec), vectorToBlob(vec), time.Now())
	if err != nil {
		return fmt.Errorf("failed to cache embedding: %w", err)
	}
	return nil
}

// Count returns the number of cached vectors for model, or all models when model is empty
func (c *EmbeddingCache) Count(model string) (int, error) {
	var n int
	var err error
	if model == "" {
		err = c.db.QueryRow("SELECT COUNT(*) FROM embedding_cache").Scan(&n)
	} else {
		err = c.db.QueryRow("SELECT COUNT(*) FROM embedding_cache WHERE model = ?", model).Scan(&n)
	}
	return n, err
}

// Purge deletes cached vectors for model, or everything when model is empty
func (c *EmbeddingCache) Purge(model string) (int64, error) {
	var res sql.Result
	var err error
	if model == "" {
		res, err = c.db.Exec("DELETE FROM embedding_cache")
	} else {
		res, err = c.db.Exec("DELETE FROM embedding_cache WHERE model = ?", model)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) models.Vector {
	count := len(blob) / 8
	vector := make(models.Vector, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}
