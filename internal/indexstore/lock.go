package indexstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// storeLock provides cross-process file locking using gofrs/flock,
// preventing two engine processes from opening the same on-disk index
// store concurrently and corrupting the row store or postings segments.
type storeLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// newStoreLock creates a lock for the store rooted at dir. The lock file
// is <dir>/.store.lock.
func newStoreLock(dir string) *storeLock {
	lockPath := filepath.Join(dir, ".store.lock")
	return &storeLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock attempts to acquire the lock without blocking, creating the
// store directory if needed.
func (l *storeLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("create store directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire store lock: %w", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Safe to call multiple times.
func (l *storeLock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release store lock: %w", err)
	}
	l.locked = false
	return nil
}
