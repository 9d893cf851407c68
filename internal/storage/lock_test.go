package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db.lock")
	lock := NewFileLock(path, time.Second, 0, nil)

	release, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err, "lock file should exist while held")

	release()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "lock file should be removed on release")
}

func TestFileLock_Contention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db.lock")
	holder := NewFileLock(path, time.Second, 0, nil)
	waiter := NewFileLock(path, 50*time.Millisecond, 0, nil)

	release, err := holder.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = waiter.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrLockContention)
	assert.Less(t, time.Since(start), time.Second, "wait must be bounded by the timeout")
}

func TestFileLock_WaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db.lock")
	holder := NewFileLock(path, time.Second, 0, nil)
	waiter := NewFileLock(path, 2*time.Second, 0, nil)

	release, err := holder.Acquire(context.Background())
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		release()
	}()

	release2, err := waiter.Acquire(context.Background())
	require.NoError(t, err)
	release2()
}

func TestFileLock_StaleLockRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db.lock")
	require.NoError(t, os.WriteFile(path, []byte("12345 2020-01-01T00:00:00Z\n"), 0644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	lock := NewFileLock(path, 50*time.Millisecond, time.Minute, nil)
	release, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	release()
}

func TestFileLock_ContextCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db.lock")
	holder := NewFileLock(path, time.Second, 0, nil)
	release, err := holder.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewFileLock(path, time.Second, 0, nil).Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileLock_SerializesWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db.lock")

	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := NewFileLock(path, 5*time.Second, 0, nil).Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			maxInside = max(maxInside, inside)
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
}

func TestDB_WriteFailsUnderContention(t *testing.T) {
	db := setupTestDB(t, WithLockTimeout(50*time.Millisecond), WithLockStaleAfter(0))
	ctx := context.Background()
	mustAdd(t, db, "before")

	// Simulate another process mid-write.
	require.NoError(t, os.WriteFile(db.Path()+".lock", []byte("1 now\n"), 0644))

	_, err := db.Add(ctx, []string{"blocked"})
	assert.ErrorIs(t, err, ErrLockContention)

	_, err = db.Renumber(ctx)
	assert.ErrorIs(t, err, ErrLockContention)

	// Readers don't take the lock.
	notes, err := db.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"before"}, messages(notes))

	require.NoError(t, os.Remove(db.Path()+".lock"))
	mustAdd(t, db, "after")
}

func TestDB_LockReleasedOnFailure(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Update(context.Background(), 7, "nobody home")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = os.Stat(db.Path() + ".lock")
	assert.True(t, os.IsNotExist(err), "lock must be released after a failed operation")
}

func TestFileLock_ReclaimStale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.db.lock")
	require.NoError(t, os.WriteFile(path, []byte("12345 old\n"), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	lock := NewFileLock(path, time.Second, time.Minute, nil)
	assert.True(t, lock.reclaim(info))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	leftovers, err := filepath.Glob(path + ".stale.*")
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileLock_ReclaimKeepsReplacedLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.db.lock")
	require.NoError(t, os.WriteFile(path, []byte("12345 old\n"), 0644))
	staleInfo, err := os.Stat(path)
	require.NoError(t, err)

	// Another waiter removed the stale file and took the lock before this
	// one got to it. The old file stays on disk so its inode is not reused.
	require.NoError(t, os.Rename(path, filepath.Join(dir, "old-lock")))
	require.NoError(t, os.WriteFile(path, []byte("67890 fresh\n"), 0644))

	lock := NewFileLock(path, time.Second, time.Minute, nil)
	assert.False(t, lock.reclaim(staleInfo))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "67890 fresh\n", string(data))
	leftovers, err := filepath.Glob(path + ".stale.*")
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
