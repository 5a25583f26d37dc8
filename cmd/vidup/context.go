package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vidup/internal/config"
	"vidup/internal/index"
	"vidup/internal/logging"
	"vidup/internal/metrics"
)

type globalFlags struct {
	config      string
	verbose     bool
	json        bool
	metricsFile string
}

type commandContext struct {
	flags *globalFlags
	runID string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	closeLog   func() error

	metrics *metrics.Metrics
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{
		flags:   flags,
		runID:   uuid.NewString(),
		metrics: metrics.New(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.flags.config)
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// JSONMode reports whether results should be rendered as JSON.
func (c *commandContext) JSONMode() bool {
	return c.flags.json
}

func (c *commandContext) Verbose() bool {
	return c.flags.verbose
}

// Logger returns the invocation logger. Construction failures fall back to
// a default console logger so commands never run without one.
func (c *commandContext) Logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		var logCfg config.Config
		if cfg != nil {
			logCfg = *cfg
		} else {
			logCfg = config.Default()
		}
		if c.flags.verbose {
			logCfg.Logging.Level = "debug"
		}
		logger, closeLog, err := logging.NewFromConfig(&logCfg, c.runID)
		if err != nil {
			logger, closeLog, _ = logging.New(logging.Options{Level: logCfg.Logging.Level, RunID: c.runID})
			logger.Warn("logger configuration rejected; using console defaults", logging.Error(err))
		}
		c.logger = logger
		c.closeLog = closeLog
	})
	return c.logger
}

// Close releases the log file opened by Logger, if any.
func (c *commandContext) Close() error {
	if c.closeLog == nil {
		return nil
	}
	return c.closeLog()
}

// withIndex opens the configured index for the duration of fn.
func (c *commandContext) withIndex(ctx context.Context, fn func(*index.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := index.Open(ctx, index.OptionsFromConfig(cfg))
	if err != nil {
		if errors.Is(err, index.ErrLocked) {
			return fmt.Errorf("open index: another vidup command is using it: %w", err)
		}
		return fmt.Errorf("open index: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// flushMetrics writes the metrics textfile when one is configured. Failures
// are logged; they never change a command's outcome.
func (c *commandContext) flushMetrics() {
	path := strings.TrimSpace(c.flags.metricsFile)
	if path == "" {
		if cfg, err := c.ensureConfig(); err == nil {
			path = cfg.Metrics.Textfile
		}
	}
	if path == "" {
		return
	}
	if err := c.metrics.WriteTextfile(path); err != nil {
		logging.WarnWithContext(c.Logger(), "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the metrics directory is writable"),
			logging.String(logging.FieldImpact, "node exporter will serve stale vidup metrics"),
		)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
