package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VIDUP_"

// Index selects the fingerprint store.
type Index struct {
	Driver string `toml:"driver" env:"DRIVER"`
	Path   string `toml:"path" env:"PATH"`
	DSN    string `toml:"dsn" env:"DSN"`
	// LockPath defaults to Path + ".lock".
	LockPath string `toml:"lock_path" env:"LOCK_PATH"`
}

// Analysis contains segmentation settings.
type Analysis struct {
	FrameRate int `toml:"frame_rate" env:"FRAME_RATE"`
}

// Transcoder locates the external decoder that produces 16x16 gray frames.
type Transcoder struct {
	FFmpegBinary  string `toml:"ffmpeg_binary" env:"FFMPEG_BINARY"`
	FFprobeBinary string `toml:"ffprobe_binary" env:"FFPROBE_BINARY"`
}

// Search contains defaults for similarity search.
type Search struct {
	Limit int `toml:"limit" env:"LIMIT"`
}

// Top contains defaults for the corpus-wide duplicate report.
type Top struct {
	Limit int `toml:"limit" env:"LIMIT"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"FORMAT"`
	Level  string `toml:"level" env:"LEVEL"`
	// File, when set, receives log output in addition to stderr.
	File string `toml:"file" env:"FILE"`
}

// Metrics configures the Prometheus textfile output.
type Metrics struct {
	Textfile string `toml:"textfile" env:"TEXTFILE"`
}

// Config encapsulates all configuration values for vidup.
//
// Configuration sections by subsystem:
//   - Index: store driver, SQLite path or PostgreSQL DSN, lock file
//   - Analysis: frame rate used when none is given on the command line
//   - Transcoder: ffmpeg/ffprobe binaries for --decode
//   - Search, Top: default result limits
//   - Logging: log format and level
//   - Metrics: node-exporter textfile destination
type Config struct {
	Index      Index      `toml:"index" envPrefix:"INDEX_"`
	Analysis   Analysis   `toml:"analysis" envPrefix:"ANALYSIS_"`
	Transcoder Transcoder `toml:"transcoder" envPrefix:"TRANSCODER_"`
	Search     Search     `toml:"search" envPrefix:"SEARCH_"`
	Top        Top        `toml:"top" envPrefix:"TOP_"`
	Logging    Logging    `toml:"logging" envPrefix:"LOGGING_"`
	Metrics    Metrics    `toml:"metrics" envPrefix:"METRICS_"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// overrides are applied after the file. The returned config has all path
// fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, "", false, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidup.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directory holding the SQLite index.
func (c *Config) EnsureDirectories() error {
	if c.Index.Driver != DriverSQLite {
		return nil
	}
	dir := filepath.Dir(c.Index.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// IndexDir returns the directory that holds the index and its lock file.
func (c *Config) IndexDir() string {
	if c.Index.Driver == DriverSQLite {
		return filepath.Dir(c.Index.Path)
	}
	if c.Index.LockPath != "" {
		return filepath.Dir(c.Index.LockPath)
	}
	return ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultIndexPath() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "vidup", "database")
	}
	return defaultIndexPathFallback
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
