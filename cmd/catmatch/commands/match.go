// ABOUTME: Match command runs the batch matcher over two catalog snapshots
// ABOUTME: Writes the JSON report, records the run in SQLite and prints a summary
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/harper/catmatch/internal/config"
	"github.com/harper/catmatch/internal/core"
	"github.com/harper/catmatch/internal/llm"
	"github.com/harper/catmatch/internal/models"
	"github.com/harper/catmatch/internal/storage/sqlite"
	"github.com/harper/catmatch/internal/textprep"
)

var (
	matchSource        string
	matchTarget        string
	matchOut           string
	matchTopK          int
	matchWorkers       int
	matchSourceIDField string
	matchTargetIDField string
	matchStopwords     string
	matchNoCache       bool
	matchOffline       bool
	matchDimension     int
)

// NewMatchCmd creates the match command
func NewMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match the source catalog against the target catalog",
		Long: `Embed both catalogs and rank the top-k target products for every
source product by cosine similarity of weighted embeddings.

Embeddings are cached in SQLite keyed by model and text, so a rerun only
pays for new or changed products. Items missing an id or title are
skipped; items whose embedding fails are logged and left out.

Examples:
  catmatch match --source japfa.json --target licious.json --out report.json
  catmatch match --source japfa.json --target licious.json --out report.json --top-k 5
  catmatch match --source a.json --target b.json --out r.json --offline --format json`,
		RunE: runMatch,
	}

	cmd.Flags().StringVar(&matchSource, "source", "", "Source (Japfa) catalog JSON file")
	cmd.Flags().StringVar(&matchTarget, "target", "", "Target (Licious) catalog JSON file")
	cmd.Flags().StringVar(&matchOut, "out", "weighted_matches.json", "Report output path")
	cmd.Flags().IntVar(&matchTopK, "top-k", 0, "Matches kept per source product (default from CATMATCH_TOP_K)")
	cmd.Flags().IntVar(&matchWorkers, "workers", 0, "Concurrent embedding workers (default from CATMATCH_WORKERS)")
	cmd.Flags().StringVar(&matchSourceIDField, "source-id-field", models.SourceIDField, "Id field in the source catalog")
	cmd.Flags().StringVar(&matchTargetIDField, "target-id-field", models.TargetIDField, "Id field in the target catalog")
	cmd.Flags().StringVar(&matchStopwords, "stopwords", "", "Stopword file extending the built-in list: .yaml override (replace_defaults: true replaces it) or one word per line")
	cmd.Flags().BoolVar(&matchNoCache, "no-cache", false, "Skip the SQLite embedding cache")
	cmd.Flags().BoolVar(&matchOffline, "offline", false, "Use deterministic hash embeddings instead of the API")
	cmd.Flags().IntVar(&matchDimension, "dimension", 256, "Vector size for --offline embeddings")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// matchResult is the summary printed after a run
type matchResult struct {
	Report      string           `json:"report" yaml:"report"`
	Model       string           `json:"model" yaml:"model"`
	Summary     *core.RunSummary `json:"summary" yaml:"summary"`
	CacheHits   int              `json:"cache_hits" yaml:"cache_hits"`
	CacheMisses int              `json:"cache_misses" yaml:"cache_misses"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = matchTopK
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = matchWorkers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer := newLogger(cmd, cfg)
	defer closer.Close()

	sources, err := models.LoadCatalog(matchSource, matchSourceIDField)
	if err != nil {
		return err
	}
	targets, err := models.LoadCatalog(matchTarget, matchTargetIDField)
	if err != nil {
		return err
	}

	stopwords := textprep.DefaultStopwords()
	if matchStopwords != "" {
		stopwords, err = textprep.LoadStopwords(matchStopwords)
		if err != nil {
			return err
		}
	}

	db, err := sqlite.Open(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("opening cache database: %w", err)
	}
	defer db.Close()

	embedder, model, err := buildEmbedder(cfg, logger)
	if err != nil {
		return err
	}

	var caching *core.CachingEmbedder
	if !matchNoCache {
		caching = core.NewCachingEmbedder(embedder, sqlite.NewEmbeddingCache(db), model, logger)
		embedder = caching
	}

	weighted, err := core.NewWeightedEmbedder(embedder, textprep.NewPreprocessor(stopwords), cfg.Weights())
	if err != nil {
		return err
	}
	matcher, err := core.NewBatchMatcher(weighted, cfg.MatchOptions(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, summary, err := matcher.MatchAll(ctx, sources.Items, targets.Items)
	if err != nil {
		return fmt.Errorf("match run failed: %w", err)
	}

	if err := report.WriteFile(matchOut); err != nil {
		return err
	}

	runs := sqlite.NewRunStore(db)
	if err := runs.Save(runRecord(summary, model, cfg.TopK)); err != nil {
		logger.Warn().Err(err).Msg("failed to record run history")
	}

	result := matchResult{Report: matchOut, Model: model, Summary: summary}
	if caching != nil {
		result.CacheHits, result.CacheMisses = caching.Stats()
	}

	out := cmd.OutOrStdout()
	if structuredOutput() {
		return writeStructured(out, result)
	}

	fmt.Fprintf(out, "Run %s\n", summary.RunID)
	fmt.Fprintf(out, "Report: %s\n", matchOut)
	fmt.Fprintf(out, "Model:  %s\n\n", model)

	w := newTable(out)
	fmt.Fprintln(w, "CATALOG\tTOTAL\tEMBEDDED\tSKIPPED\tFAILED")
	fmt.Fprintln(w, "-------\t-----\t--------\t-------\t------")
	fmt.Fprintf(w, "source\t%d\t%d\t%d\t%d\n", summary.Source.Total, summary.Source.Embedded, summary.Source.Skipped, summary.Source.Failed)
	fmt.Fprintf(w, "target\t%d\t%d\t%d\t%d\n", summary.Target.Total, summary.Target.Embedded, summary.Target.Skipped, summary.Target.Failed)
	w.Flush()

	if !quiet {
		fmt.Fprintf(out, "\nMatched %d source products in %s", summary.Matched, summary.Duration.Round(time.Millisecond))
		if caching != nil {
			fmt.Fprintf(out, " (cache: %d hits, %d misses)", result.CacheHits, result.CacheMisses)
		}
		fmt.Fprintln(out)
	}

	return nil
}

// buildEmbedder returns the base embedder and the model name the cache keys on
func buildEmbedder(cfg *config.Config, logger zerolog.Logger) (core.Embedder, string, error) {
	if matchOffline {
		hash := core.NewHashEmbedder(matchDimension)
		return hash, fmt.Sprintf("hash-%d", hash.Dimension), nil
	}

	if cfg.OpenAIKey == "" {
		return nil, "", fmt.Errorf("%w: OPENAI_API_KEY is not set (use --offline to match without the API)", models.ErrConfiguration)
	}

	client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
	})
	if err != nil {
		return nil, "", err
	}

	opts := []core.RetryOption{core.WithLogger(logger)}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, core.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)))
	}
	return core.NewRetryingEmbedder(client, cfg.RetryPolicy(), opts...), client.Model(), nil
}

func runRecord(summary *core.RunSummary, model string, topK int) *sqlite.RunRecord {
	return &sqlite.RunRecord{
		ID:            summary.RunID,
		SourcePath:    matchSource,
		TargetPath:    matchTarget,
		ReportPath:    matchOut,
		Model:         model,
		TopK:          topK,
		Matched:       summary.Matched,
		SourceTotal:   summary.Source.Total,
		SourceSkipped: summary.Source.Skipped,
		SourceFailed:  summary.Source.Failed,
		TargetTotal:   summary.Target.Total,
		TargetSkipped: summary.Target.Skipped,
		TargetFailed:  summary.Target.Failed,
		Duration:      summary.Duration,
	}
}
