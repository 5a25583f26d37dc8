package duplicate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/patrickmn/go-cache"

	"vidup/internal/index"
	"vidup/internal/logging"
	"vidup/internal/scene"
)

// DefaultLimit bounds SearchFile results and Top candidates when the caller
// passes a non-positive limit.
const DefaultLimit = 10

// Index is the read side of the fingerprint store.
type Index interface {
	ScenesByFile(ctx context.Context, id index.FileID, acc []index.Scene) ([]index.Scene, error)
	ScenesByHash(ctx context.Context, id scene.ID, acc []index.Scene) ([]index.Scene, error)
	TopHashes(ctx context.Context, limit int) ([]index.HashCount, error)
	FileName(ctx context.Context, id index.FileID) (string, error)
}

// Match is a file sharing Count scenes with the searched file.
type Match struct {
	FileID index.FileID `json:"file_id"`
	Name   string       `json:"name"`
	Count  int          `json:"count"`
}

// Relation is an unordered file pair and the total duration of the scenes they share.
type Relation struct {
	A          index.FileID `json:"file_a"`
	B          index.FileID `json:"file_b"`
	NameA      string       `json:"name_a"`
	NameB      string       `json:"name_b"`
	DurationMs uint64       `json:"duration_ms"`
}

// Engine runs duplicate queries against an Index.
type Engine struct {
	idx    Index
	logger *slog.Logger
	names  *cache.Cache
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New constructs an Engine.
func New(idx Index, opts ...Option) *Engine {
	e := &Engine{
		idx:    idx,
		logger: logging.NewNop(),
		// No janitor: entries live as long as the engine.
		names: cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) fileName(ctx context.Context, id index.FileID) (string, error) {
	key := strconv.FormatInt(int64(id), 10)
	if cached, ok := e.names.Get(key); ok {
		return cached.(string), nil
	}
	name, err := e.idx.FileName(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolve file name: %w", err)
	}
	e.names.SetDefault(key, name)
	return name, nil
}

// SearchFile ranks files by the number of scenes they share with id. The
// file itself is never reported. An empty result means no duplicates.
func (e *Engine) SearchFile(ctx context.Context, id index.FileID, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	own, err := e.idx.ScenesByFile(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("search file: %w", err)
	}

	var found []index.Scene
	for _, sc := range own {
		if found, err = e.idx.ScenesByHash(ctx, sc.ID, found); err != nil {
			return nil, fmt.Errorf("search file: %w", err)
		}
	}

	counts := make(map[index.FileID]int)
	for _, sc := range found {
		if sc.FileID == id {
			continue
		}
		counts[sc.FileID]++
	}

	matches := make([]Match, 0, len(counts))
	for fileID, count := range counts {
		matches = append(matches, Match{FileID: fileID, Count: count})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Count != matches[j].Count {
			return matches[i].Count > matches[j].Count
		}
		return matches[i].FileID < matches[j].FileID
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	for i := range matches {
		if matches[i].Name, err = e.fileName(ctx, matches[i].FileID); err != nil {
			return nil, err
		}
	}
	e.logger.Debug("search complete",
		logging.Int64("file_id", int64(id)),
		logging.Int("own_scenes", len(own)),
		logging.Int("candidates", len(counts)),
	)
	return matches, nil
}
