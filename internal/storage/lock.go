package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Lock defaults.
const (
	DefaultLockTimeout    = 5 * time.Second
	DefaultLockStaleAfter = time.Minute
	lockRetryInterval     = 10 * time.Millisecond
)

// FileLock is a cross-process exclusive lock backed by a lock file created
// with O_EXCL. Only one process at a time can hold it.
type FileLock struct {
	path       string
	timeout    time.Duration
	staleAfter time.Duration
	interval   time.Duration
	logger     *zap.Logger
}

// NewFileLock returns a lock on path. Acquire gives up after timeout. A lock
// file older than staleAfter is treated as left behind by a crashed process
// and removed; zero disables that check.
func NewFileLock(path string, timeout, staleAfter time.Duration, logger *zap.Logger) *FileLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileLock{
		path:       path,
		timeout:    timeout,
		staleAfter: staleAfter,
		interval:   lockRetryInterval,
		logger:     logger,
	}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Acquire blocks until the lock is held, the timeout expires, or ctx is
// done. The returned release function must be called exactly once.
func (l *FileLock) Acquire(ctx context.Context) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(l.interval), 1)
	attempts := 0

	for {
		attempts++
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
			f.Close()
			l.logger.Debug("lock acquired", zap.String("path", l.path), zap.Int("attempts", attempts))
			return l.release, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("%w: creating lock file: %v", ErrStorageUnavailable, err)
		}

		if l.removeIfStale() {
			continue
		}

		if err := limiter.Wait(waitCtx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s still held after %s", ErrLockContention, l.path, l.timeout)
		}
	}
}

func (l *FileLock) release() {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("removing lock file", zap.String("path", l.path), zap.Error(err))
		return
	}
	l.logger.Debug("lock released", zap.String("path", l.path))
}

// removeIfStale deletes the lock file if it is older than staleAfter.
// Returns true if a stale lock was removed.
func (l *FileLock) removeIfStale() bool {
	if l.staleAfter <= 0 {
		return false
	}
	info, err := os.Stat(l.path)
	if err != nil {
		// Vanished between our create attempt and now; just retry.
		return errors.Is(err, os.ErrNotExist)
	}
	age := time.Since(info.ModTime())
	if age < l.staleAfter {
		return false
	}
	if !l.reclaim(info) {
		return false
	}
	l.logger.Warn("removed stale lock file", zap.String("path", l.path), zap.Duration("age", age))
	return true
}

// reclaim renames the lock file aside and deletes it, provided it is still
// the file described by stale. A lock created by another waiter after the
// stale check is put back.
func (l *FileLock) reclaim(stale os.FileInfo) bool {
	aside := fmt.Sprintf("%s.stale.%d.%d", l.path, os.Getpid(), time.Now().UnixNano())
	if err := os.Rename(l.path, aside); err != nil {
		// Another waiter reclaimed it first.
		return errors.Is(err, os.ErrNotExist)
	}
	defer os.Remove(aside)

	moved, err := os.Stat(aside)
	if err == nil && os.SameFile(stale, moved) {
		return true
	}

	if err := os.Link(aside, l.path); err != nil {
		l.logger.Warn("restoring replaced lock file", zap.String("path", l.path), zap.Error(err))
	}
	return false
}
