// Package lock serializes rename batches across rnm processes with an
// OS-level file lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrLocked is returned when another process holds the lock past the timeout.
	ErrLocked = errors.New("another rnm process is renaming")
	// ErrPathRequired is returned when the lock path is empty.
	ErrPathRequired = errors.New("lock path is required")
)

// pollInterval is how often a contended lock is retried.
const pollInterval = 10 * time.Millisecond

// Lock is a held batch lock.
type Lock struct {
	path  string
	flock *flock.Flock
}

// Acquire takes the exclusive lock at path, waiting up to timeout. The
// context cancels the wait early.
func Acquire(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	if path == "" {
		return nil, ErrPathRequired
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, pollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return &Lock{path: path, flock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}
