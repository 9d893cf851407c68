package storage

import (
	"context"
	"database/sql/driver"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock hands out increasing times, one minute apart.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Minute)
	return t
}

// setupTestDB opens a fresh store in a temp directory.
func setupTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "notes.db")
	opts = append([]Option{WithClock(newTestClock().Now)}, opts...)

	db, err := OpenDB(path, opts...)
	require.NoError(t, err, "OpenDB()")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "notes.db")

	db, err := OpenDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "OpenDB() did not create database file")

	ns, err := db.GetMeta(context.Background(), "namespace")
	require.NoError(t, err)
	assert.Equal(t, Namespace, ns)

	version, err := db.GetMeta(context.Background(), "schema_version")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestOpenDB_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "notes.db")
	ctx := context.Background()

	db, err := OpenDB(dbPath)
	require.NoError(t, err)
	created, err := db.GetMeta(ctx, "created_at")
	require.NoError(t, err)
	_, err = db.Add(ctx, []string{"kept"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(dbPath, WithClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)
	defer db.Close()

	notes, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "kept", notes[0].Message)

	again, err := db.GetMeta(ctx, "created_at")
	require.NoError(t, err)
	assert.Equal(t, created, again, "reopening must not rewrite metadata")
}

func TestOpenDB_Unavailable(t *testing.T) {
	// A regular file where the parent directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := OpenDB(filepath.Join(blocker, "notes.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestDB_GetMeta_Missing(t *testing.T) {
	db := setupTestDB(t)

	value, err := db.GetMeta(context.Background(), "no_such_key")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 2, 29, 23, 59, 1, 5, time.UTC)

	got, err := parseTime(formatTime(want))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = parseTime("2024-02-29T23:59:01+02:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 2, 29, 21, 59, 1, 0, time.UTC)))

	_, err = parseTime("yesterday")
	assert.Error(t, err)
}

func TestFormatTime_SortsLexically(t *testing.T) {
	early := formatTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := formatTime(time.Date(2024, 1, 1, 0, 0, 0, 500, time.UTC))
	assert.Less(t, early, late)
	assert.Len(t, late, len(early))
}

func TestUnicodeLower(t *testing.T) {
	tests := []struct {
		in   driver.Value
		want driver.Value
	}{
		{"ÉCOLE", "école"},
		{[]byte("ÜBER"), "über"},
		{"plain", "plain"},
		{int64(7), int64(7)},
		{nil, nil},
	}

	for _, tt := range tests {
		got, err := unicodeLower(nil, []driver.Value{tt.in})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
