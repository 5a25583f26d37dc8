package index

import (
	"path/filepath"
	"strings"
)

// NameFromPath derives a file's index identity from a path: the base name
// with its final extension removed. Names that start with their only dot
// (".hidden") are kept whole.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return base
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return base
	}
	return base[:dot]
}
