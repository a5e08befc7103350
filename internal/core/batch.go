// ABOUTME: Batch matcher that embeds both catalogs once and ranks every source item
// ABOUTME: Embedding runs on a bounded worker pool; failed items are skipped, not fatal
package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/harper/catmatch/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultTopK is the number of matches kept per source item
const DefaultTopK = 3

// MatchOptions controls a batch run
type MatchOptions struct {
	TopK    int
	Workers int
}

// Validate rejects k <= 0 and an empty worker pool
func (o MatchOptions) Validate() error {
	if o.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive, got %d", models.ErrConfiguration, o.TopK)
	}
	if o.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", models.ErrConfiguration, o.Workers)
	}
	return nil
}

// ItemFailure records why an item was left out of the report
type ItemFailure struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}

// CatalogSummary counts the outcome for one side of the run
type CatalogSummary struct {
	Total    int           `json:"total"`
	Embedded int           `json:"embedded"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// RunSummary describes a finished batch run
type RunSummary struct {
	RunID    string         `json:"run_id"`
	Source   CatalogSummary `json:"source"`
	Target   CatalogSummary `json:"target"`
	Matched  int            `json:"matched"`
	Duration time.Duration  `json:"duration"`
}

// ItemEmbedder produces one vector per catalog item
type ItemEmbedder interface {
	EmbedItem(ctx context.Context, item models.CatalogItem) (models.Vector, error)
}

// BatchMatcher matches a source catalog against a target catalog
type BatchMatcher struct {
	embedder ItemEmbedder
	opts     MatchOptions
	logger   zerolog.Logger
}

// NewBatchMatcher validates options before any embedding call can happen
func NewBatchMatcher(embedder ItemEmbedder, opts MatchOptions, logger zerolog.Logger) (*BatchMatcher, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &BatchMatcher{embedder: embedder, opts: opts, logger: logger}, nil
}

// MatchAll embeds every item once, then ranks all targets for each source.
// The report holds only successfully embedded sources; targets that failed
// are never offered as candidates. A cancelled context aborts the run.
func (m *BatchMatcher) MatchAll(ctx context.Context, sources, targets []models.CatalogItem) (*models.MatchReport, *RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{RunID: uuid.New().String()}
	logger := m.logger.With().Str("run_id", summary.RunID).Logger()

	logger.Info().Int("sources", len(sources)).Int("targets", len(targets)).Int("top_k", m.opts.TopK).Msg("starting match run")

	sourceVecs, err := m.embedAll(ctx, logger, "source", sources, &summary.Source)
	if err != nil {
		return nil, nil, err
	}
	targetVecs, err := m.embedAll(ctx, logger, "target", targets, &summary.Target)
	if err != nil {
		return nil, nil, err
	}

	// Candidate set: embedded targets in catalog order
	candidates := make([]models.CatalogItem, 0, len(targets))
	candidateVecs := make([]models.Vector, 0, len(targets))
	for i, vec := range targetVecs {
		if vec != nil {
			candidates = append(candidates, targets[i])
			candidateVecs = append(candidateVecs, vec)
		}
	}

	report := models.NewMatchReport()
	for i, src := range sources {
		if sourceVecs[i] == nil {
			continue
		}
		ranked := TopK(sourceVecs[i], candidateVecs, m.opts.TopK)

		matches := make([]models.Match, 0, len(ranked))
		for _, c := range ranked {
			tgt := candidates[c.Index]
			matches = append(matches, models.Match{
				TargetID:   tgt.ID,
				Title:      tgt.Title,
				Type:       tgt.Type,
				Category:   tgt.Category,
				Confidence: models.FormatConfidence(c.Score),
			})
		}

		report.WeightedMatches[src.ID] = models.ReportEntry{
			Source: models.ProductSummary{
				Title:    src.Title,
				Category: src.Category,
				Type:     src.Type,
			},
			Matches: matches,
		}
	}

	summary.Matched = len(report.WeightedMatches)
	summary.Duration = time.Since(start)
	logger.Info().
		Int("matched", summary.Matched).
		Int("source_skipped", summary.Source.Skipped).
		Int("source_failed", summary.Source.Failed).
		Int("target_skipped", summary.Target.Skipped).
		Int("target_failed", summary.Target.Failed).
		Dur("duration", summary.Duration).
		Msg("match run complete")

	return report, summary, nil
}

// embedAll returns one vector per item, nil where the item was skipped or failed.
// Each worker writes only its own slot, so result order never depends on completion order.
func (m *BatchMatcher) embedAll(ctx context.Context, logger zerolog.Logger, side string, items []models.CatalogItem, summary *CatalogSummary) ([]models.Vector, error) {
	vecs := make([]models.Vector, len(items))
	summary.Total = len(items)

	var (
		mu       sync.Mutex
		done     atomic.Int64
		seen     = make(map[string]bool, len(items))
		failures []ItemFailure
	)
	record := func(item models.CatalogItem, skipped bool, reason string) {
		mu.Lock()
		defer mu.Unlock()
		if skipped {
			summary.Skipped++
		} else {
			summary.Failed++
		}
		failures = append(failures, ItemFailure{ID: item.ID, Title: item.Title, Reason: reason})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)

	for i, item := range items {
		if err := item.Validate(); err != nil {
			record(item, true, err.Error())
			continue
		}
		// Reports are keyed by id; a repeated id would overwrite an earlier entry
		if seen[item.ID] {
			record(item, true, "duplicate id")
			continue
		}
		seen[item.ID] = true

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, err := m.embedder.EmbedItem(gctx, item)
			n := done.Add(1)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if errors.Is(err, models.ErrMissingField) {
					record(item, true, err.Error())
				} else {
					record(item, false, err.Error())
				}
				logger.Warn().Err(err).Str("side", side).Str("id", item.ID).Msg("skipping item")
				return nil
			}
			vecs[i] = vec
			logger.Info().Str("side", side).Int64("done", n).Int("total", len(items)).Str("id", item.ID).Msg("embedded item")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("embedding %s items: %w", side, err)
	}

	sort.SliceStable(failures, func(a, b int) bool { return failures[a].ID < failures[b].ID })
	summary.Failures = failures
	for _, v := range vecs {
		if v != nil {
			summary.Embedded++
		}
	}
	return vecs, nil
}
