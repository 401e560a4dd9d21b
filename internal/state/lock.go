package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	// LockFileName is created next to the state file while a command
	// changes installed tools.
	LockFileName = "state.lock"

	// StaleLockThreshold is the age after which a lock is assumed to be
	// left over from a crashed run.
	StaleLockThreshold = 10 * time.Minute
)

// ErrLocked is returned when another ir process holds the lock.
var ErrLocked = errors.New("state is locked: another ir command may be running")

// Lock guards the state directory against concurrent ir processes.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock takes the lock in dir. A lock older than StaleLockThreshold
// is replaced once.
func AcquireLock(ctx context.Context, dir string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := filepath.Join(dir, LockFileName)
	file, err := createExclusive(path)
	if errors.Is(err, fs.ErrExist) && isStale(path) {
		_ = os.Remove(path)
		file, err = createExclusive(path)
	}
	switch {
	case errors.Is(err, fs.ErrExist):
		return nil, fmt.Errorf("%w (remove %s if it is not)", ErrLocked, path)
	case err != nil:
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	data := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(data); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	return &Lock{path: path, file: file}, nil
}

func createExclusive(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
}

func isStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > StaleLockThreshold
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if l.path == "" {
		return nil
	}
	err := os.Remove(l.path)
	l.path = ""
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
