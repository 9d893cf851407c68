// Package storage is the note store: it owns the SQLite database holding
// notes, assigns note ids and answers queries over them.
package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"modernc.org/sqlite"
)

// Persisted layout constants.
const (
	Namespace     = "coredb"
	SchemaVersion = "1"

	// timeLayout is fixed-width so that text ordering matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	busyTimeoutMillis = 5000
)

// lowerFunc is a Unicode-aware replacement for SQLite's lower(), which
// folds ASCII only.
const lowerFunc = "note_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(lowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// DB is an open note store. It is not safe to share one DB across
// processes; cross-process writers are serialized by the lock file.
type DB struct {
	db     *sql.DB
	path   string
	lock   *FileLock
	now    func() time.Time
	logger *zap.Logger
}

type options struct {
	lockTimeout    time.Duration
	lockStaleAfter time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

// Option configures OpenDB.
type Option func(*options)

// WithLockTimeout bounds how long a mutating operation waits for the write
// lock before failing with ErrLockContention.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) { o.lockTimeout = d }
}

// WithLockStaleAfter sets the age after which a lock file is considered
// abandoned. Zero disables stale lock recovery.
func WithLockStaleAfter(d time.Duration) Option {
	return func(o *options) { o.lockStaleAfter = d }
}

// WithClock overrides the time source used for note timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func defaultOptions() options {
	return options{
		lockTimeout:    DefaultLockTimeout,
		lockStaleAfter: DefaultLockStaleAfter,
		now:            time.Now,
		logger:         zap.NewNop(),
	}
}

// OpenDB opens or creates the note database at path and ensures its schema
// exists. Failures are reported as ErrStorageUnavailable.
func OpenDB(path string, opts ...Option) (*DB, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: creating database directory: %v", ErrStorageUnavailable, err)
		}
	}

	conn, err := sql.Open("sqlite", dataSourceName(path))
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", ErrStorageUnavailable, err)
	}

	// One connection per process; cross-process writers go through the lock.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: opening database: %v", ErrStorageUnavailable, err)
	}

	lock := NewFileLock(path+".lock", o.lockTimeout, o.lockStaleAfter, o.logger)
	d := newDB(conn, path, lock, o)

	if err := d.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", ErrStorageUnavailable, err)
	}

	o.logger.Debug("opened note store", zap.String("path", path))
	return d, nil
}

func newDB(conn *sql.DB, path string, lock *FileLock, o options) *DB {
	return &DB{
		db:     conn,
		path:   path,
		lock:   lock,
		now:    o.now,
		logger: o.logger,
	}
}

// dataSourceName adds the driver parameters the store relies on: a busy
// timeout for readers racing a commit, WAL so readers see a consistent
// snapshot, and immediate transactions so writers take the write lock up
// front.
func dataSourceName(path string) string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_txlock=immediate",
		path, busyTimeoutMillis)
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// createSchema creates the notes and metadata tables if they don't exist.
func (d *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS notes (
			nid INTEGER NOT NULL PRIMARY KEY,
			date TEXT NOT NULL,
			message TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return err
	}

	// INSERT OR IGNORE keeps the first values on later opens.
	meta := map[string]string{
		"namespace":      Namespace,
		"schema_version": SchemaVersion,
		"created_at":     d.now().UTC().Format(time.RFC3339),
	}
	for key, value := range meta {
		if _, err := d.db.Exec(`INSERT OR IGNORE INTO _meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("writing %s metadata: %w", key, err)
		}
	}
	return nil
}

// GetMeta returns a value from the _meta table, or "" if it is not set.
func (d *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := d.db.QueryRowContext(ctx, `SELECT value FROM _meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s metadata: %w", key, err)
	}
	return value.String, nil
}

// withWriteTx runs fn inside one transaction while holding the cross-process
// write lock. The lock is released and the transaction rolled back on every
// path that does not commit.
func (d *DB) withWriteTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	release, err := d.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: beginning transaction: %w", op, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.logger.Warn("rollback failed", zap.String("op", op), zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: committing: %w", op, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by other tools may use plain RFC 3339.
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}
