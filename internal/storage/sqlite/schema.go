// ABOUTME: SQLite database schema for catmatch local storage
// ABOUTME: Holds the embedding cache and the match run history
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Embedding cache keyed by model and the sha256 of the embedded text
CREATE TABLE IF NOT EXISTS embedding_cache (
    model TEXT NOT NULL,
    text_hash TEXT NOT NULL,
    text TEXT NOT NULL,
    dimension INTEGER NOT NULL,
    vector BLOB NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (model, text_hash)
);

-- One row per finished match run
CREATE TABLE IF NOT EXISTS match_runs (
    id TEXT PRIMARY KEY,
    source_path TEXT,
    target_path TEXT,
    report_path TEXT,
    model TEXT,
    top_k INTEGER NOT NULL,
    matched INTEGER NOT NULL,
    source_total INTEGER NOT NULL,
    source_skipped INTEGER NOT NULL,
    source_failed INTEGER NOT NULL,
    target_total INTEGER NOT NULL,
    target_skipped INTEGER NOT NULL,
    target_failed INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cache_created ON embedding_cache(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_created ON match_runs(created_at);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
