package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"vidup/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths accepts "stdout", "stderr", or file paths. Files always
	// receive JSON so they stay parseable regardless of Format.
	OutputPaths []string
	RunID       string
	Development bool
	// NoColor disables ANSI colour even on a terminal.
	NoColor bool
}

// New constructs a slog logger using the provided options. The returned
// function closes any log files the logger writes to; it is safe to call more
// than once.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	outputs, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stderr"}))
	if err != nil {
		return nil, nil, err
	}

	handlers := make([]slog.Handler, 0, len(outputs))
	for _, out := range outputs {
		switch {
		case out.closer != nil || format == "json":
			handlers = append(handlers, newJSONHandler(out.w, levelVar, addSource))
		default:
			handlers = append(handlers, tint.NewHandler(out.w, &tint.Options{
				Level:      levelVar,
				AddSource:  addSource,
				TimeFormat: "15:04:05",
				NoColor:    opts.NoColor || !isTerminal(out.w),
			}))
		}
	}

	logger := slog.New(newFanoutHandler(handlers...))
	if opts.RunID != "" {
		logger = logger.With(String(FieldRunID, opts.RunID))
	}
	return logger, sync.OnceValue(func() error { return closeOutputs(outputs) }), nil
}

// NewFromConfig creates a logger using application config defaults.
func NewFromConfig(cfg *config.Config, runID string) (*slog.Logger, func() error, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", RunID: runID})
	}
	outputs := []string{"stderr"}
	if cfg.Logging.File != "" {
		outputs = append(outputs, cfg.Logging.File)
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		RunID:       runID,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), value...)
}

type output struct {
	w io.Writer
	// closer is set for files opened by openWriters.
	closer io.Closer
}

func openWriters(paths []string) ([]output, error) {
	seen := map[string]struct{}{}
	var outputs []output
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			outputs = append(outputs, output{w: os.Stdout})
		case "stderr":
			outputs = append(outputs, output{w: os.Stderr})
		default:
			if err := ensureLogDir(trimmed); err != nil {
				_ = closeOutputs(outputs)
				return nil, err
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				_ = closeOutputs(outputs)
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			outputs = append(outputs, output{w: file, closer: file})
		}
	}
	if len(outputs) == 0 {
		outputs = append(outputs, output{w: os.Stderr})
	}
	return outputs, nil
}

func closeOutputs(outputs []output) error {
	var errs []error
	for _, out := range outputs {
		if out.closer == nil {
			continue
		}
		if err := out.closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
