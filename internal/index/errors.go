package index

import "errors"

var (
	// ErrNotFound is returned when a file name has no entry.
	ErrNotFound = errors.New("file not found")
	// ErrNameExists is returned when registering a name that is already indexed.
	ErrNameExists = errors.New("file name already indexed")
	// ErrNotInitialized is returned when the schema has not been created yet.
	ErrNotInitialized = errors.New("index not initialized")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrLocked is returned by Open when another process owns the index.
	ErrLocked = errors.New("index is locked by another process")
	// ErrUnsupportedDriver is returned for drivers other than sqlite and postgres.
	ErrUnsupportedDriver = errors.New("unsupported index driver")
)
