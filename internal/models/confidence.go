// ABOUTME: Confidence formatting, parsing, and labeling for match reports
// ABOUTME: The "NN.NN%" string form is a frozen contract consumed by dashboards
package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var confidencePattern = regexp.MustCompile(`^\d+(\.\d+)?%$`)

// Default dashboard cutoffs in percent
const (
	DefaultMatchThreshold = 70.0
	DefaultBestThreshold  = 90.0
	DefaultExactThreshold = 95.0
)

// Confidence labels shown next to a match
const (
	LabelExact   = "Exact Match"
	LabelBest    = "Best Match"
	LabelSimilar = "Similar Product"
)

// FormatConfidence scales a cosine score to a two-decimal percentage.
// Negative scores are clamped to 0 so the output always matches \d+(\.\d+)?%.
func FormatConfidence(score float64) string {
	if score < 0 {
		score = 0
	}
	return fmt.Sprintf("%.2f%%", score*100)
}

// ParseConfidence converts "NN.NN%" back to a percentage value
func ParseConfidence(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !confidencePattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidConfidence, s)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidConfidence, s)
	}
	return v, nil
}

// Thresholds are the uncalibrated UI cutoffs, in percent
type Thresholds struct {
	Match float64 `json:"match" yaml:"match"`
	Best  float64 `json:"best" yaml:"best"`
	Exact float64 `json:"exact" yaml:"exact"`
}

// DefaultThresholds returns the 70/90/95 cutoffs
func DefaultThresholds() Thresholds {
	return Thresholds{
		Match: DefaultMatchThreshold,
		Best:  DefaultBestThreshold,
		Exact: DefaultExactThreshold,
	}
}

// Validate checks the cutoffs are percentages in ascending order
func (t Thresholds) Validate() error {
	for _, v := range []float64{t.Match, t.Best, t.Exact} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: threshold %.2f outside 0-100", ErrConfiguration, v)
		}
	}
	if t.Match > t.Best || t.Best > t.Exact {
		return fmt.Errorf("%w: thresholds must satisfy match <= best <= exact", ErrConfiguration)
	}
	return nil
}

// Label classifies a confidence percentage
func (t Thresholds) Label(confidence float64) string {
	switch {
	case confidence > t.Exact:
		return LabelExact
	case confidence >= t.Best:
		return LabelBest
	default:
		return LabelSimilar
	}
}
