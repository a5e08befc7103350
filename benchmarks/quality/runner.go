// ABOUTME: Benchmark runner for match quality scenarios
// ABOUTME: Runs the batch matcher on labeled catalogs and exports scored results

package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/harper/catmatch/internal/core"
	"github.com/harper/catmatch/internal/models"
	"github.com/harper/catmatch/internal/textprep"
	"github.com/rs/zerolog"
)

// BenchmarkRunner executes quality scenarios against one embedding provider
type BenchmarkRunner struct {
	matcher *core.BatchMatcher
	metrics *MetricsCalculator
	logger  zerolog.Logger
}

// NewBenchmarkRunner wires the weighted embedder and batch matcher around embedder
func NewBenchmarkRunner(embedder core.Embedder, weights core.Weights, opts core.MatchOptions, logger zerolog.Logger) (*BenchmarkRunner, error) {
	weighted, err := core.NewWeightedEmbedder(embedder, textprep.NewPreprocessor(textprep.DefaultStopwords()), weights)
	if err != nil {
		return nil, fmt.Errorf("failed to build weighted embedder: %w", err)
	}
	matcher, err := core.NewBatchMatcher(weighted, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build matcher: %w", err)
	}
	return &BenchmarkRunner{
		matcher: matcher,
		metrics: NewMetricsCalculator(),
		logger:  logger,
	}, nil
}

// RunScenario matches one scenario and scores the report
func (r *BenchmarkRunner) RunScenario(ctx context.Context, scenario Scenario) (Result, error) {
	r.logger.Info().Str("scenario", scenario.ID).Msg("running scenario")

	report, _, err := r.matcher.MatchAll(ctx, scenario.Sources, scenario.Targets)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %s: %w", scenario.ID, err)
	}
	return r.metrics.Evaluate(scenario.ID, scenario.Name, report, scenario.GroundTruth.Expected), nil
}

// RunAll executes every built-in scenario
func (r *BenchmarkRunner) RunAll(ctx context.Context) ([]Result, error) {
	scenarios := GetAllScenarios()
	results := make([]Result, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunScenario(ctx, scenario)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// EvaluateReport scores an existing report file against reviewer labels
func EvaluateReport(report *models.MatchReport, labels map[string]string) Result {
	return NewMetricsCalculator().Evaluate("report", "Labeled report", report, labels)
}

// ExportResults exports results to JSON
func ExportResults(results []Result, outputPath string) error {
	summary := struct {
		Timestamp  string   `json:"timestamp"`
		TotalTests int      `json:"total_tests"`
		Passed     int      `json:"passed"`
		Failed     int      `json:"failed"`
		Results    []Result `json:"results"`
	}{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalTests: len(results),
		Results:    results,
	}

	for _, result := range results {
		if result.Status == "PASS" {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	return nil
}
