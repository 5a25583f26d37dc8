package preflight

import (
	"context"

	"vidup/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the readiness checks for the given config. Binary checks
// are reported separately by CheckSystemDeps.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if dir := cfg.IndexDir(); dir != "" {
		results = append(results, CheckDirectoryAccess("Index directory", dir))
	}
	results = append(results, CheckIndex(ctx, cfg))
	results = append(results, CheckHardwareCRC())

	return results
}
