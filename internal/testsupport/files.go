package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"vidup/internal/frame"
)

// Solid returns count frames of a single gray level.
func Solid(level byte, count int) []byte {
	return bytes.Repeat([]byte{level}, frame.Size*count)
}

// Clip concatenates frame runs.
func Clip(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// WriteFrames stores a raw frame clip at path, creating parent directories.
func WriteFrames(t testing.TB, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
