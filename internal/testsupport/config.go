package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vidup/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a default config whose index lives in a per-test temp
// directory, then applies opts.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Index.Path = filepath.Join(base, "index", "database")
	cfgVal.Index.LockPath = cfgVal.Index.Path + ".lock"
	if err := os.MkdirAll(filepath.Dir(cfgVal.Index.Path), 0o755); err != nil {
		t.Fatalf("mkdir index dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFrameRate overrides the analysis frame rate.
func WithFrameRate(rate int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.FrameRate = rate
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// makes them the only entries on PATH. If names is empty, ffmpeg and ffprobe
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Index.Path))
}
