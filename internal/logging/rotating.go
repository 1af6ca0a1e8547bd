package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
)

const (
	// DefaultMaxBytes is the size a log file may reach before it is rotated.
	DefaultMaxBytes int64 = 10 * 1024 * 1024
	// LockTimeout bounds how long a write waits for the cross-process lock.
	LockTimeout = 10 * time.Second
	// LockRetryInterval is the pause between lock attempts.
	LockRetryInterval = 25 * time.Millisecond
	// LogFilePermissions is the mode of created log files.
	LogFilePermissions = 0644
	// LogDirPermissions is the mode of created log directories.
	LogDirPermissions = 0755

	rotatedTimeLayout = "20060102-150405"
)

var errLockBusy = errors.New("log file lock is held by another process")

// RotatingFile is an append-only log sink that renames the current file aside
// when the next write would push it past maxBytes. The entry that triggers a
// rotation is written to the fresh file.
type RotatingFile struct {
	fs          afero.Fs
	path        string
	maxBytes    int64
	lockTimeout time.Duration
	now         func() time.Time
	mu          sync.Mutex
}

// NewRotatingFile creates the log directory and returns a sink for path.
// A non-positive maxBytes selects DefaultMaxBytes.
func NewRotatingFile(fs afero.Fs, path string, maxBytes int64) (*RotatingFile, error) {
	if path == "" {
		return nil, fmt.Errorf("log path cannot be empty")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := fs.MkdirAll(filepath.Dir(path), LogDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &RotatingFile{
		fs:          fs,
		path:        path,
		maxBytes:    maxBytes,
		lockTimeout: LockTimeout,
		now:         time.Now,
	}, nil
}

// Path returns the active log file path.
func (r *RotatingFile) Path() string {
	return r.path
}

// Write appends p, rotating first when needed.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock := flock.New(r.path + ".lock")
	if err := r.acquireLock(lock); err != nil {
		return 0, fmt.Errorf("failed to acquire log lock: %w", err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to unlock log file: %v\n", unlockErr)
		}
	}()
	if err := r.rotateIfNeeded(int64(len(p))); err != nil {
		return 0, err
	}
	f, err := r.fs.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, LogFilePermissions)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	n, err := f.Write(p)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// Sync is a no-op; every Write closes the file.
func (r *RotatingFile) Sync() error {
	return nil
}

func (r *RotatingFile) acquireLock(lock *flock.Flock) error {
	backoff := retry.WithMaxDuration(r.lockTimeout, retry.NewConstant(LockRetryInterval))
	return retry.Do(context.Background(), backoff, func(_ context.Context) error {
		locked, err := lock.TryLock()
		if err != nil {
			return err
		}
		if !locked {
			return retry.RetryableError(errLockBusy)
		}
		return nil
	})
}

func (r *RotatingFile) rotateIfNeeded(incoming int64) error {
	info, err := r.fs.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() == 0 || info.Size()+incoming <= r.maxBytes {
		return nil
	}
	target, err := r.rotatedName()
	if err != nil {
		return err
	}
	if err := r.fs.Rename(r.path, target); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return nil
}

func (r *RotatingFile) rotatedName() (string, error) {
	base := r.path + "." + r.now().Format(rotatedTimeLayout)
	name := base
	for i := 1; ; i++ {
		exists, err := afero.Exists(r.fs, name)
		if err != nil {
			return "", fmt.Errorf("failed to check rotated log name: %w", err)
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
}
