package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireLock(t *testing.T) {
	t.Run("creates lock file", func(t *testing.T) {
		dir := t.TempDir()

		lock, err := AcquireLock(context.Background(), dir)
		if err != nil {
			t.Fatalf("AcquireLock() error = %v", err)
		}
		defer lock.Release()

		if _, err := os.Stat(filepath.Join(dir, LockFileName)); err != nil {
			t.Errorf("lock file not created: %v", err)
		}
	})

	t.Run("prevents concurrent locks", func(t *testing.T) {
		dir := t.TempDir()

		lock, err := AcquireLock(context.Background(), dir)
		if err != nil {
			t.Fatalf("first AcquireLock() error = %v", err)
		}
		defer lock.Release()

		if _, err := AcquireLock(context.Background(), dir); !errors.Is(err, ErrLocked) {
			t.Errorf("second AcquireLock() error = %v, want ErrLocked", err)
		}
	})

	t.Run("replaces stale lock", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, LockFileName)
		if err := os.WriteFile(path, []byte("pid=1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-2 * StaleLockThreshold)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}

		lock, err := AcquireLock(context.Background(), dir)
		if err != nil {
			t.Fatalf("AcquireLock() error = %v", err)
		}
		lock.Release()
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := AcquireLock(ctx, t.TempDir()); !errors.Is(err, context.Canceled) {
			t.Errorf("AcquireLock() error = %v, want context.Canceled", err)
		}
	})
}

func TestLock_Release(t *testing.T) {
	dir := t.TempDir()
	lock, err := AcquireLock(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockFileName)); !os.IsNotExist(err) {
		t.Error("lock file still present")
	}

	again, err := AcquireLock(context.Background(), dir)
	if err != nil {
		t.Fatalf("AcquireLock() after Release error = %v", err)
	}
	again.Release()
}
