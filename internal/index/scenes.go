package index

import (
	"context"
	"database/sql"
	"fmt"

	"vidup/internal/scene"
)

// RegisterScene appends one scene to a file's scene list.
func (s *Store) RegisterScene(ctx context.Context, sc Scene) error {
	if err := s.requireSchema(ctx); err != nil {
		return err
	}
	_, err := s.execWithRetry(ctx,
		"INSERT INTO scenes (hash, duration_ms, file_id) VALUES (?, ?, ?)",
		int64(sc.ID.Hash), int64(sc.ID.DurationMs), int64(sc.FileID),
	)
	if err != nil {
		return fmt.Errorf("register scene: %w", err)
	}
	return nil
}

// ScenesByFile appends a file's scenes to acc in insertion order.
func (s *Store) ScenesByFile(ctx context.Context, id FileID, acc []Scene) ([]Scene, error) {
	if err := s.requireSchema(ctx); err != nil {
		return acc, err
	}
	rows, err := s.query(ctx, "SELECT hash, duration_ms FROM scenes WHERE file_id = ? ORDER BY id", int64(id))
	if err != nil {
		return acc, fmt.Errorf("scenes by file: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash, duration int64
		if err := rows.Scan(&hash, &duration); err != nil {
			return acc, fmt.Errorf("scan scene: %w", err)
		}
		acc = append(acc, Scene{ID: sceneID(hash, duration), FileID: id})
	}
	if err := rows.Err(); err != nil {
		return acc, fmt.Errorf("scenes by file: %w", err)
	}
	return acc, nil
}

// ScenesByHash appends one Scene per distinct file that contains id.
func (s *Store) ScenesByHash(ctx context.Context, id scene.ID, acc []Scene) ([]Scene, error) {
	if err := s.requireSchema(ctx); err != nil {
		return acc, err
	}
	rows, err := s.query(ctx,
		"SELECT DISTINCT file_id FROM scenes WHERE (hash = ? AND duration_ms = ?)",
		int64(id.Hash), int64(id.DurationMs),
	)
	if err != nil {
		return acc, fmt.Errorf("scenes by hash: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fileID sql.NullInt64
		if err := rows.Scan(&fileID); err != nil {
			return acc, fmt.Errorf("scan scene: %w", err)
		}
		acc = append(acc, Scene{ID: id, FileID: FileID(fileID.Int64)})
	}
	if err := rows.Err(); err != nil {
		return acc, fmt.Errorf("scenes by hash: %w", err)
	}
	return acc, nil
}

// TopHashes returns up to limit fingerprints that occur in more than one
// scene row, longest scenes first.
func (s *Store) TopHashes(ctx context.Context, limit int) ([]HashCount, error) {
	if err := s.requireSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx,
		`SELECT hash, duration_ms, COUNT(hash)
         FROM scenes
         GROUP BY hash, duration_ms
         HAVING COUNT(hash) > 1
         ORDER BY duration_ms DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top hashes: %w", err)
	}
	defer rows.Close()

	var out []HashCount
	for rows.Next() {
		var hash, duration, count int64
		if err := rows.Scan(&hash, &duration, &count); err != nil {
			return nil, fmt.Errorf("scan hash count: %w", err)
		}
		out = append(out, HashCount{ID: sceneID(hash, duration), Count: int(count)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top hashes: %w", err)
	}
	return out, nil
}

func sceneID(hash, duration int64) scene.ID {
	return scene.ID{Hash: uint32(hash), DurationMs: uint32(duration)}
}
