// ABOUTME: History and cache commands inspect the local SQLite database
// ABOUTME: Lists past match runs, exports them, and manages cached embeddings
package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/catmatch/internal/storage/sqlite"
)

var (
	historyLimit  int
	historyExport string
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent match runs",
		Long: `List match runs recorded in the local database, newest first.

Examples:
  catmatch history
  catmatch history --limit 5 --format json
  catmatch history --export runs.yaml`,
		RunE: runHistory,
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to show")
	cmd.Flags().StringVar(&historyExport, "export", "", "Write all runs to a YAML (or .json) file")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(historyLimit, "limit"); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := sqlite.Open(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if historyExport != "" {
		if err := sqlite.ExportToFile(db, historyExport); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported run history to %s\n", historyExport)
		return nil
	}

	runs, err := sqlite.NewRunStore(db).List(historyLimit)
	if err != nil {
		return err
	}

	if structuredOutput() {
		return writeStructured(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No match runs recorded")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "RUN\tMODEL\tMATCHED\tFAILED\tDURATION\tWHEN")
	fmt.Fprintln(w, "---\t-----\t-------\t------\t--------\t----")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d\t%s\t%s\n",
			truncate(r.ID, 8),
			r.Model,
			r.Matched,
			r.SourceTotal,
			r.SourceFailed+r.TargetFailed,
			r.Duration.Round(time.Millisecond),
			formatTime(r.CreatedAt),
		)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(out, "\nTotal: %d runs\n", len(runs))
	}
	return nil
}

// NewCacheCmd creates the cache command group
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the embedding cache",
		Long: `Inspect or clear the SQLite embedding cache.

Cached vectors are keyed by embedding model and input text, so
changing CATMATCH_EMBEDDING_MODEL never reuses stale vectors.`,
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCachePurgeCmd())

	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how many embeddings are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := sqlite.Open(cfg.CachePath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			count, err := sqlite.NewEmbeddingCache(db).Count(model)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if structuredOutput() {
				return writeStructured(out, map[string]interface{}{
					"path":    db.Path(),
					"model":   model,
					"entries": count,
				})
			}
			fmt.Fprintf(out, "Path:    %s\n", db.Path())
			if model != "" {
				fmt.Fprintf(out, "Model:   %s\n", model)
			}
			fmt.Fprintf(out, "Entries: %d\n", count)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Only count one embedding model")

	return cmd
}

func newCachePurgeCmd() *cobra.Command {
	var model string
	var confirm bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !confirm {
				fmt.Fprintln(out, "This will delete cached embeddings; the next match run re-embeds every product")
				fmt.Fprintln(out, "Run with --confirm to proceed")
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := sqlite.Open(cfg.CachePath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			removed, err := sqlite.NewEmbeddingCache(db).Purge(model)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d cached embeddings\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Only purge one embedding model")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the purge")

	return cmd
}
