package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLockTryLock(t *testing.T) {
	lockFile := filepath.Join(t.TempDir(), "config.json.lock")

	first := NewFileLock(lockFile)
	second := NewFileLock(lockFile)

	locked, err := first.TryLock()
	if err != nil || !locked {
		t.Fatalf("first TryLock = %v, %v; want true, nil", locked, err)
	}
	if _, err := os.Stat(lockFile); err != nil {
		t.Errorf("lock file should exist after locking: %v", err)
	}

	locked, err = second.TryLock()
	if err != nil {
		t.Fatalf("unexpected error on second TryLock: %v", err)
	}
	if locked {
		t.Error("second TryLock should fail while the first lock is held")
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	locked, err = second.TryLock()
	if err != nil || !locked {
		t.Errorf("TryLock after release = %v, %v; want true, nil", locked, err)
	}
	second.Unlock()
}

func TestAcquireFileLockTimeout(t *testing.T) {
	lockFile := filepath.Join(t.TempDir(), "config.json.lock")

	holder, err := AcquireFileLock(lockFile, time.Second)
	if err != nil {
		t.Fatalf("AcquireFileLock: %v", err)
	}
	defer holder.Unlock()

	start := time.Now()
	_, err = AcquireFileLock(lockFile, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout while lock is held")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("gave up after %v, before the timeout", elapsed)
	}
}

func TestAcquireFileLockAfterRelease(t *testing.T) {
	lockFile := filepath.Join(t.TempDir(), "config.json.lock")

	holder, err := AcquireFileLock(lockFile, time.Second)
	if err != nil {
		t.Fatalf("AcquireFileLock: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		holder.Unlock()
	}()

	waiter, err := AcquireFileLock(lockFile, 2*time.Second)
	if err != nil {
		t.Fatalf("waiter should acquire once the holder releases: %v", err)
	}
	waiter.Unlock()
}
