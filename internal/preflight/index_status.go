package preflight

import (
	"context"
	"errors"
	"fmt"

	"vidup/internal/config"
	"vidup/internal/index"
)

// IndexProbe is a snapshot of the configured index.
type IndexProbe struct {
	Health index.Health
	Err    error
}

// ProbeIndex opens the configured index, reads its health counters and
// closes it again. The index lock is held only for the duration of the probe.
func ProbeIndex(ctx context.Context, cfg *config.Config) IndexProbe {
	if cfg == nil {
		return IndexProbe{Err: errors.New("no configuration")}
	}
	store, err := index.Open(ctx, index.OptionsFromConfig(cfg))
	if err != nil {
		return IndexProbe{Err: err}
	}
	defer store.Close()

	health, err := store.Health(ctx)
	return IndexProbe{Health: health, Err: err}
}

// CheckIndex converts a probe into a preflight result.
func CheckIndex(ctx context.Context, cfg *config.Config) Result {
	return ProbeIndex(ctx, cfg).Result()
}

// Result renders the probe as a pass/fail check.
func (p IndexProbe) Result() Result {
	const name = "Index"
	switch {
	case errors.Is(p.Err, index.ErrLocked):
		return Result{Name: name, Detail: "in use by another vidup process"}
	case p.Err != nil:
		return Result{Name: name, Detail: p.Err.Error()}
	case !p.Health.Initialized:
		return Result{Name: name, Detail: fmt.Sprintf("%s not initialized (run 'vidup init')", p.Health.Location)}
	case p.Health.SchemaVersion != index.SchemaVersion():
		return Result{Name: name, Detail: fmt.Sprintf("schema version %d, expected %d", p.Health.SchemaVersion, index.SchemaVersion())}
	}
	return Result{Name: name, Passed: true, Detail: p.IndexDetail()}
}

// IndexDetail renders a display-friendly summary for status output.
func (p IndexProbe) IndexDetail() string {
	if p.Err != nil || !p.Health.Initialized {
		return "Unavailable"
	}
	return fmt.Sprintf("%s %s: %d files (%d analyzed), %d scenes",
		p.Health.Driver, p.Health.Location, p.Health.Files, p.Health.Analyzed, p.Health.Scenes)
}
