package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	sqliteBusyCode          = 5
	sqliteConstraintCode    = 19
	sqliteUniqueCode        = 2067
	pgUniqueViolation       = "23505"
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Options selects and locates the backing database.
type Options struct {
	Driver string
	// Path is the SQLite database file.
	Path string
	// DSN is the PostgreSQL connection string.
	DSN string
	// LockPath overrides the advisory lock file. SQLite defaults to Path + ".lock";
	// PostgreSQL is only locked when LockPath is set.
	LockPath string
}

// Store manages fingerprint persistence.
type Store struct {
	db       *sql.DB
	driver   string
	location string
	lock     *flock.Flock
	ready    atomic.Bool
}

// Open connects to the database described by opts and takes the index lock.
// The schema is not touched; call Init to create it.
func Open(ctx context.Context, opts Options) (*Store, error) {
	ctx = ensureContext(ctx)
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		sqlDriver string
		source    string
		location  string
		lockPath  = strings.TrimSpace(opts.LockPath)
	)
	switch driver {
	case DriverSQLite:
		if strings.TrimSpace(opts.Path) == "" {
			return nil, errors.New("sqlite index path is required")
		}
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure index directory: %w", err)
		}
		sqlDriver, source, location = "sqlite", opts.Path, opts.Path
		if lockPath == "" {
			lockPath = opts.Path + ".lock"
		}
	case DriverPostgres:
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		sqlDriver, source, location = "pgx", opts.DSN, redactDSN(opts.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, opts.Driver)
	}

	var lock *flock.Flock
	if lockPath != "" {
		lock = flock.New(lockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire index lock: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, lockPath)
		}
	}

	db, err := sql.Open(sqlDriver, source)
	if err != nil {
		releaseLock(lock)
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One connection keeps PRAGMAs and write ordering consistent.
		db.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys = ON",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
				_ = db.Close()
				releaseLock(lock)
				return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
			}
		}
	} else if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		releaseLock(lock)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db, driver: driver, location: location, lock: lock}, nil
}

// Close closes the database and releases the index lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	releaseLock(s.lock)
	return err
}

// Driver reports the backend in use.
func (s *Store) Driver() string {
	return s.driver
}

func releaseLock(lock *flock.Flock) {
	if lock != nil {
		_ = lock.Unlock()
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// rebind rewrites '?' placeholders to PostgreSQL's positional form.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		code := coder.Code()
		return code == sqliteUniqueCode || code == sqliteConstraintCode
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	query = s.rebind(query)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func (s *Store) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	ctx = ensureContext(ctx)
	query = s.rebind(query)
	var id int64
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	})
	return id, err
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ensureContext(ctx), s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ensureContext(ctx), s.rebind(query), args...)
}

func redactDSN(dsn string) string {
	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return "postgres"
	}
	return fmt.Sprintf("postgres://%s@%s:%d/%s", cfg.User, cfg.Host, cfg.Port, cfg.Database)
}
