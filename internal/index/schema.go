package index

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed schema_sqlite.sql
	schemaSQLite string
	//go:embed schema_postgres.sql
	schemaPostgres string
)

// schemaVersion is the current schema version. Bump this when the schema changes.
// Users will need to re-create their index after schema changes.
const schemaVersion = 2

// Init creates the schema if it does not exist yet. Running it against an
// initialized index is a no-op; a version mismatch is reported.
func (s *Store) Init(ctx context.Context) error {
	ctx = ensureContext(ctx)
	exists, err := s.versionTableExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.createSchema(ctx); err != nil {
			return err
		}
	}
	return s.requireSchema(ctx)
}

// SchemaVersion returns the version this build expects.
func SchemaVersion() int {
	return schemaVersion
}

func (s *Store) versionTableExists(ctx context.Context) (bool, error) {
	query := "SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'"
	if s.driver == DriverPostgres {
		query = "SELECT COUNT(1) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = 'schema_version'"
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return false, fmt.Errorf("check schema_version table: %w", err)
	}
	return count > 0, nil
}

func (s *Store) readVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// requireSchema verifies the schema once per Store.
func (s *Store) requireSchema(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	ctx = ensureContext(ctx)
	exists, err := s.versionTableExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: run 'vidup init' first", ErrNotInitialized)
	}
	version, err := s.readVersion(ctx)
	if err != nil {
		return err
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: index has version %d, expected %d (re-create the index)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	s.ready.Store(true)
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	schema := schemaSQLite
	if s.driver == DriverPostgres {
		schema = schemaPostgres
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range splitStatements(schema) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, s.rebind("INSERT INTO schema_version (version) VALUES (?)"), schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func splitStatements(schema string) []string {
	parts := strings.Split(schema, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
