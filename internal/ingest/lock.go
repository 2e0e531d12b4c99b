package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	kberrors "github.com/opskb/opskb/internal/errors"
)

// FileLock guards a data directory against concurrent ingestion runs from
// other processes. Works on all platforms (Unix, Linux, macOS, Windows).
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock for the given data directory. The lock file
// lives at <dir>/.ingest.lock.
func NewFileLock(dir string) *FileLock {
	lockPath := filepath.Join(dir, ".ingest.lock")
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Acquire takes the lock without blocking. A held lock from another process
// yields ErrCodeIngestLocked.
func (l *FileLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !acquired {
		return kberrors.New(kberrors.ErrCodeIngestLocked,
			"another ingestion is already running").
			WithDetail("lock_file", l.path)
	}
	l.locked = true
	return nil
}

// Release drops the lock. Safe to call on an unheld lock.
func (l *FileLock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release ingest lock: %w", err)
	}
	return nil
}
