// ABOUTME: Export of match run history
// ABOUTME: Supports YAML and JSON export formats
package sqlite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportData represents the complete exportable history
type ExportData struct {
	Version    string      `yaml:"version" json:"version"`
	ExportedAt string      `yaml:"exported_at" json:"exported_at"`
	Tool       string      `yaml:"tool" json:"tool"`
	CacheSize  int         `yaml:"cache_size" json:"cache_size"`
	Runs       []RunRecord `yaml:"runs" json:"runs"`
}

// Export collects run history and cache size
func Export(db *DB) (*ExportData, error) {
	runs, err := NewRunStore(db).List(0)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	size, err := NewEmbeddingCache(db).Count("")
	if err != nil {
		return nil, fmt.Errorf("failed to count cache: %w", err)
	}
	if runs == nil {
		runs = []RunRecord{}
	}
	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "catmatch",
		CacheSize:  size,
		Runs:       runs,
	}, nil
}

// ExportToFile writes the history as YAML, or JSON when the extension is .json
func ExportToFile(db *DB, outputPath string) error {
	data, err := Export(db)
	if err != nil {
		return err
	}

	var out []byte
	if filepath.Ext(outputPath) == ".json" {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = yaml.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
