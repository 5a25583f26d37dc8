package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeIndex(); err != nil {
		return err
	}
	c.normalizeTranscoder()
	c.normalizeLimits()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeMetrics()
}

func (c *Config) normalizeIndex() error {
	c.Index.Driver = strings.ToLower(strings.TrimSpace(c.Index.Driver))
	switch c.Index.Driver {
	case "", "sqlite3":
		c.Index.Driver = DriverSQLite
	case "postgresql", "pgx":
		c.Index.Driver = DriverPostgres
	}
	c.Index.DSN = strings.TrimSpace(c.Index.DSN)

	var err error
	if strings.TrimSpace(c.Index.Path) == "" {
		c.Index.Path = defaultIndexPath()
	}
	if c.Index.Path, err = expandPath(c.Index.Path); err != nil {
		return fmt.Errorf("index.path: %w", err)
	}
	if c.Index.LockPath, err = expandPath(strings.TrimSpace(c.Index.LockPath)); err != nil {
		return fmt.Errorf("index.lock_path: %w", err)
	}
	if c.Index.LockPath == "" && c.Index.Driver == DriverSQLite {
		c.Index.LockPath = c.Index.Path + ".lock"
	}
	return nil
}

func (c *Config) normalizeTranscoder() {
	c.Transcoder.FFmpegBinary = strings.TrimSpace(c.Transcoder.FFmpegBinary)
	if c.Transcoder.FFmpegBinary == "" {
		c.Transcoder.FFmpegBinary = defaultFFmpegBinary
	}
	c.Transcoder.FFprobeBinary = strings.TrimSpace(c.Transcoder.FFprobeBinary)
	if c.Transcoder.FFprobeBinary == "" {
		c.Transcoder.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLimits() {
	if c.Search.Limit == 0 {
		c.Search.Limit = defaultSearchLimit
	}
	if c.Top.Limit == 0 {
		c.Top.Limit = defaultTopLimit
	}
}

func (c *Config) normalizeLogging() error {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "text", "pretty":
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level

	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	var err error
	if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}
