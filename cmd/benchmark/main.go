// ABOUTME: Command-line benchmark runner for match quality
// ABOUTME: Scores built-in scenarios or a labeled report and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harper/catmatch/benchmarks/quality"
	"github.com/harper/catmatch/internal/config"
	"github.com/harper/catmatch/internal/core"
	"github.com/harper/catmatch/internal/llm"
	"github.com/harper/catmatch/internal/logging"
	"github.com/harper/catmatch/internal/models"
	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run one scenario (reorder, noise, type). If empty, runs all scenarios.")
	reportPath := flag.String("report", "", "Score an existing match report instead of running scenarios")
	labelsPath := flag.String("labels", "", "Reviewer labels JSON for --report")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	offline := flag.Bool("offline", false, "Use hash embeddings instead of the OpenAI API")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	if err := godotenv.Load(); err != nil && *verbose {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger, closer := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Verbose: *verbose})
	defer closer.Close()

	fmt.Println("========================================")
	fmt.Println("catmatch Quality Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	var results []quality.Result

	if *reportPath != "" {
		if *labelsPath == "" {
			log.Fatal("--labels is required with --report")
		}
		report, err := models.LoadReport(*reportPath)
		if err != nil {
			log.Fatalf("Failed to load report: %v", err)
		}
		labels, err := quality.LoadLabels(*labelsPath)
		if err != nil {
			log.Fatalf("Failed to load labels: %v", err)
		}
		results = []quality.Result{quality.EvaluateReport(report, labels)}
	} else {
		var embedder core.Embedder
		if *offline {
			embedder = core.NewHashEmbedder(256)
		} else {
			if cfg.OpenAIKey == "" {
				log.Fatal("OPENAI_API_KEY environment variable is required (or pass --offline)")
			}
			client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
				APIKey:         cfg.OpenAIKey,
				BaseURL:        cfg.OpenAIBaseURL,
				EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
				Timeout:        cfg.Timeout,
			})
			if err != nil {
				log.Fatalf("Failed to create OpenAI client: %v", err)
			}
			embedder = core.NewRetryingEmbedder(client, cfg.RetryPolicy(), core.WithLogger(logger))
		}

		runner, err := quality.NewBenchmarkRunner(embedder, cfg.Weights(), cfg.MatchOptions(), logger)
		if err != nil {
			log.Fatalf("Failed to create benchmark runner: %v", err)
		}

		ctx := context.Background()
		if *scenarioID == "" {
			fmt.Println("Running all quality scenarios...")
			fmt.Println()
			results, err = runner.RunAll(ctx)
			if err != nil {
				log.Fatalf("Benchmark failed: %v", err)
			}
		} else {
			scenario, err := quality.GetScenario(*scenarioID)
			if err != nil {
				log.Fatalf("%v (valid options: reorder, noise, type)", err)
			}
			fmt.Printf("Running scenario: %s\n\n", scenario.Name)
			result, err := runner.RunScenario(ctx, scenario)
			if err != nil {
				log.Fatalf("Scenario failed: %v", err)
			}
			results = []quality.Result{result}
		}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	passed := 0
	failed := 0

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.ScenarioID, result.ScenarioName)
		fmt.Printf("  Labeled:      %d\n", result.Labeled)
		fmt.Printf("  Precision@1:  %.2f\n", result.PrecisionAt1)
		fmt.Printf("  Recall@k:     %.2f\n", result.RecallAtK)
		fmt.Printf("  MRR:          %.2f\n", result.MRR)
		fmt.Printf("  Status:       %s\n", result.Status)

		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total: %d\n", len(results))
	fmt.Printf("Passed: %d\n", passed)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println("========================================")

	if err := quality.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
