package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"

	derrors "github.com/nextgenai/docindex/internal/errors"
)

// RunLock serializes ingestion runs against one index. Two concurrent
// clear-and-rebuild runs would interleave their upserts, so the second
// run must fail fast instead of starting.
type RunLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// lockNameSanitizer strips characters unsafe in file names.
var lockNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// NewRunLock creates a lock for the named index. The lock file lives under
// the user cache directory, keyed by index name, so separate indexes can
// ingest in parallel.
func NewRunLock(indexName string) (*RunLock, error) {
	dir, err := lockDir()
	if err != nil {
		return nil, err
	}

	name := lockNameSanitizer.ReplaceAllString(indexName, "_")
	path := filepath.Join(dir, fmt.Sprintf("ingest-%s.lock", name))
	return &RunLock{path: path, flock: flock.New(path)}, nil
}

// lockDir returns the directory for lock files, creating it if needed.
func lockDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "docindex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create lock directory: %w", err)
	}
	return dir, nil
}

// Acquire takes the lock without blocking. Contention is an error; the
// caller reports it and exits rather than queueing behind another run.
func (l *RunLock) Acquire() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return derrors.Newf(derrors.ErrCodeRunLockHeld,
			"another ingestion run holds %s", l.path).
			WithSuggestion("wait for the other run to finish, or remove a stale lock file")
	}
	l.locked = true
	return nil
}

// Release drops the lock. Safe to call on an unacquired lock.
func (l *RunLock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.path
}
