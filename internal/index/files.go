package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RegisterFile inserts name as a new Unanalyzed file.
func (s *Store) RegisterFile(ctx context.Context, name string) (FileID, error) {
	if err := s.requireSchema(ctx); err != nil {
		return 0, err
	}
	id, err := s.insertReturningID(ctx,
		"INSERT INTO files (path, status) VALUES (?, ?) RETURNING id",
		name, int(StatusUnanalyzed),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("register file %q: %w", name, ErrNameExists)
		}
		return 0, fmt.Errorf("register file: %w", err)
	}
	return FileID(id), nil
}

// UpdateFileStatus sets the status of a file. Unknown ids are ignored.
func (s *Store) UpdateFileStatus(ctx context.Context, id FileID, status FileStatus) error {
	if err := s.requireSchema(ctx); err != nil {
		return err
	}
	if _, err := s.execWithRetry(ctx, "UPDATE files SET status = ? WHERE id = ?", int(status), int64(id)); err != nil {
		return fmt.Errorf("update file status: %w", err)
	}
	return nil
}

// DeleteFile removes a file and, through the foreign key, all of its scenes.
// Deleting an unknown id is a no-op.
func (s *Store) DeleteFile(ctx context.Context, id FileID) error {
	if err := s.requireSchema(ctx); err != nil {
		return err
	}
	if _, err := s.execWithRetry(ctx, "DELETE FROM files WHERE id = ?", int64(id)); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// FileEntry looks a file up by name.
func (s *Store) FileEntry(ctx context.Context, name string) (FileEntry, error) {
	if err := s.requireSchema(ctx); err != nil {
		return FileEntry{}, err
	}
	var (
		id     int64
		status sql.NullInt64
	)
	err := s.queryRow(ctx, "SELECT id, status FROM files WHERE path = ?", name).Scan(&id, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return FileEntry{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return FileEntry{}, fmt.Errorf("get file entry: %w", err)
	}
	return FileEntry{ID: FileID(id), Name: name, Status: FileStatus(status.Int64)}, nil
}

// FileName returns the name of a file, or "" when the id is unknown.
func (s *Store) FileName(ctx context.Context, id FileID) (string, error) {
	if err := s.requireSchema(ctx); err != nil {
		return "", err
	}
	var name sql.NullString
	err := s.queryRow(ctx, "SELECT path FROM files WHERE id = ?", int64(id)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get file name: %w", err)
	}
	return name.String, nil
}

// Files lists every indexed file ordered by name.
func (s *Store) Files(ctx context.Context) ([]FileEntry, error) {
	if err := s.requireSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, "SELECT id, path, status FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []FileEntry
	for rows.Next() {
		var (
			id     int64
			name   sql.NullString
			status sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &status); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, FileEntry{ID: FileID(id), Name: name.String, Status: FileStatus(status.Int64)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}
