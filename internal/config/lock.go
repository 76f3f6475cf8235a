package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout bounds how long a config write waits for another process.
const DefaultLockTimeout = 5 * time.Second

// FileLock is an exclusive advisory lock on a lock file next to a config file
type FileLock struct {
	path  string
	flock *flock.Flock
}

// NewFileLock creates an unlocked FileLock for path. The file is created on
// first lock.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path, flock: flock.New(path)}
}

// TryLock attempts the lock without blocking
func (l *FileLock) TryLock() (bool, error) {
	locked, err := l.flock.TryLock()
	if err != nil {
		slog.Error("error during try-lock attempt", "file_path", l.path, "error", err)
		return false, err
	}
	slog.Debug("try-lock attempt", "file_path", l.path, "acquired", locked)
	return locked, nil
}

// Unlock releases the lock
func (l *FileLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		slog.Error("failed to release file lock", "file_path", l.path, "error", err)
		return err
	}
	slog.Debug("file lock released", "file_path", l.path)
	return nil
}

// AcquireFileLock retries TryLock with capped exponential backoff until
// timeout expires.
func AcquireFileLock(path string, timeout time.Duration) (*FileLock, error) {
	lock := NewFileLock(path)

	deadline := time.Now().Add(timeout)
	retryDelay := 10 * time.Millisecond

	for {
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to try lock %s: %w", path, err)
		}
		if locked {
			return lock, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		time.Sleep(min(retryDelay, remaining))
		retryDelay = min(retryDelay*2, 100*time.Millisecond)
	}

	return nil, fmt.Errorf("timeout acquiring file lock %s after %v", path, timeout)
}
