// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Output formatting, config and logger setup used by every command
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/harper/catmatch/internal/config"
	"github.com/harper/catmatch/internal/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// validateFormat rejects unknown --format values
func validateFormat(format string) error {
	switch format {
	case formatAuto, formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (want auto, table, json or yaml)", format)
}

// structuredOutput reports whether the selected format is machine-readable
func structuredOutput() bool {
	return outputFormat == formatJSON || outputFormat == formatYAML
}

// writeStructured encodes v as JSON or YAML according to --format
func writeStructured(w io.Writer, v interface{}) error {
	if outputFormat == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// loadConfig reads .env and the environment
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger on stderr so stdout stays parseable
func newLogger(cmd *cobra.Command, cfg *config.Config) (zerolog.Logger, io.Closer) {
	return logging.Setup(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Verbose: verbose,
		Quiet:   quiet,
		Out:     cmd.ErrOrStderr(),
	})
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// validatePercent returns error if p is outside 0-100
func validatePercent(p float64, name string) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("%s must be between 0 and 100, got %g", name, p)
	}
	return nil
}
