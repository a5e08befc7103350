// ABOUTME: Structured logging setup shared by the CLI and MCP server
// ABOUTME: Human-readable console output plus an optional rotating log file
package logging

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

// Options controls logger construction
type Options struct {
	Level   string
	File    string
	Verbose bool
	Quiet   bool
	// Out receives console output; defaults to stderr so stdout stays machine-readable
	Out io.Writer
}

// Setup builds a logger writing to the console and, when File is set, to a rotating file.
// The returned closer flushes the file and is safe to call when no file is configured.
func Setup(opts Options) (zerolog.Logger, io.Closer) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ResolveLevel(opts.Level, opts.Verbose, opts.Quiet)).
		With().Timestamp().Logger()
	return logger, closer
}

// ResolveLevel applies the verbose and quiet flags over the configured level
func ResolveLevel(level string, verbose, quiet bool) zerolog.Level {
	switch {
	case quiet:
		return zerolog.WarnLevel
	case verbose:
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
