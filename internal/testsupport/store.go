package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"vidup/internal/config"
	"vidup/internal/index"
)

// MustOpenIndex opens and initializes a SQLite index under a temporary
// directory and closes it when the test ends.
func MustOpenIndex(t testing.TB) *index.Store {
	t.Helper()
	return MustOpenIndexAt(t, filepath.Join(t.TempDir(), "database"))
}

// MustOpenIndexAt is MustOpenIndex for a caller-chosen path.
func MustOpenIndexAt(t testing.TB, path string) *index.Store {
	t.Helper()
	return mustOpen(t, index.Options{Driver: index.DriverSQLite, Path: path})
}

// MustOpenConfiguredIndex opens and initializes the index cfg points at.
func MustOpenConfiguredIndex(t testing.TB, cfg *config.Config) *index.Store {
	t.Helper()
	return mustOpen(t, index.OptionsFromConfig(cfg))
}

func mustOpen(t testing.TB, opts index.Options) *index.Store {
	t.Helper()
	store, err := index.Open(context.Background(), opts)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init index: %v", err)
	}
	return store
}
