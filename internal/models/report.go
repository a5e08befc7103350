// ABOUTME: Match report model written by the batch matcher
// ABOUTME: JSON layout is fixed: weighted_matches -> source id -> japfa_product + matches
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ProductSummary is the source product echoed into the report
type ProductSummary struct {
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category_name" yaml:"category_name"`
	Type     string `json:"type" yaml:"type"`
}

// Match is one ranked target product with its formatted confidence
type Match struct {
	TargetID   string `json:"licious_id" yaml:"licious_id"`
	Title      string `json:"title" yaml:"title"`
	Type       string `json:"type" yaml:"type"`
	Category   string `json:"category_name" yaml:"category_name"`
	Confidence string `json:"confidence" yaml:"confidence"`
}

// ConfidenceValue parses the match confidence; malformed values read as 0
func (m Match) ConfidenceValue() float64 {
	v, err := ParseConfidence(m.Confidence)
	if err != nil {
		return 0
	}
	return v
}

// ReportEntry holds the top-k matches for a single source item
type ReportEntry struct {
	Source  ProductSummary `json:"japfa_product" yaml:"japfa_product"`
	Matches []Match        `json:"matches" yaml:"matches"`
}

// MatchReport maps source item id to its entry
type MatchReport struct {
	WeightedMatches map[string]ReportEntry `json:"weighted_matches" yaml:"weighted_matches"`
}

// NewMatchReport returns an empty report
func NewMatchReport() *MatchReport {
	return &MatchReport{WeightedMatches: make(map[string]ReportEntry)}
}

// SourceIDs returns the report keys in sorted order
func (r *MatchReport) SourceIDs() []string {
	ids := make([]string, 0, len(r.WeightedMatches))
	for id := range r.WeightedMatches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entry looks up a source id
func (r *MatchReport) Entry(sourceID string) (ReportEntry, error) {
	entry, ok := r.WeightedMatches[sourceID]
	if !ok {
		return ReportEntry{}, fmt.Errorf("%w: source %s", ErrNotFound, sourceID)
	}
	return entry, nil
}

// Validate checks every confidence string keeps the frozen format
func (r *MatchReport) Validate() error {
	for _, id := range r.SourceIDs() {
		for _, m := range r.WeightedMatches[id].Matches {
			if _, err := ParseConfidence(m.Confidence); err != nil {
				return fmt.Errorf("source %s, target %s: %w", id, m.TargetID, err)
			}
		}
	}
	return nil
}

// ParseReport decodes report JSON
func ParseReport(data []byte) (*MatchReport, error) {
	report := NewMatchReport()
	if err := json.Unmarshal(data, report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	if report.WeightedMatches == nil {
		report.WeightedMatches = make(map[string]ReportEntry)
	}
	return report, nil
}

// LoadReport reads a report file
func LoadReport(path string) (*MatchReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return ParseReport(data)
}

// WriteFile writes the report atomically: temp file in the same directory, then rename
func (r *MatchReport) WriteFile(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data := buf.Bytes()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("creating temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming report into place: %w", err)
	}
	return nil
}
