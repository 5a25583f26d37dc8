package index

import (
	"context"
	"fmt"
	"time"
)

// Health returns diagnostic information about the index. An uninitialized
// index is reported, not treated as an error.
func (s *Store) Health(ctx context.Context) (Health, error) {
	health := Health{Driver: s.driver, Location: s.location}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		return health, fmt.Errorf("ping index: %w", err)
	}
	exists, err := s.versionTableExists(connCtx)
	if err != nil || !exists {
		return health, err
	}
	health.Initialized = true
	if health.SchemaVersion, err = s.readVersion(connCtx); err != nil {
		return health, err
	}
	if health.SchemaVersion != schemaVersion {
		return health, nil
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(1) FROM files", &health.Files},
		{"SELECT COUNT(1) FROM files WHERE status = 1", &health.Analyzed},
		{"SELECT COUNT(1) FROM scenes", &health.Scenes},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(connCtx, c.query).Scan(c.dest); err != nil {
			return health, fmt.Errorf("count rows: %w", err)
		}
	}
	return health, nil
}
