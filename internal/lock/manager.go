package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

var (
	// ErrLockTimeout is returned when acquiring a lock times out.
	ErrLockTimeout = fmt.Errorf("timeout acquiring lock")
	// ErrTargetRequired is returned when the path to lock is empty.
	ErrTargetRequired = fmt.Errorf("lock target is required")
	// ErrNilLock is returned when a nil lock handle is provided to ReleaseLock.
	ErrNilLock = fmt.Errorf("nil lock handle")
)

const (
	// shortPollInterval is the interval to sleep when polling for a lock.
	shortPollInterval = 10 * time.Millisecond

	defaultLockDirName = "file-utils-locks"

	// gateFileName is held shared while a lock file is opened and locked, and exclusively
	// while Cleanup unlinks. An acquirer therefore never ends up holding an unlinked file.
	gateFileName = "cleanup.gate"
)

// LockManager hands out OS-level advisory locks for paths. Lock files live in a
// dedicated directory and are named after a hash of the cleaned target path, so
// directories can be locked without writing anything into them.
type LockManager struct {
	lockDir string
	logger  *zap.Logger
}

// NewLockManager returns a LockManager storing lock files in lockDir. An empty
// lockDir selects a directory under os.TempDir().
func NewLockManager(lockDir string, logger *zap.Logger) *LockManager {
	if lockDir == "" {
		lockDir = filepath.Join(os.TempDir(), defaultLockDirName)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockManager{lockDir: lockDir, logger: logger}
}

// LockDir reports where lock files are created.
func (lm *LockManager) LockDir() string { return lm.lockDir }

// LockPath returns the lock file used for target.
func (lm *LockManager) LockPath(target string) string {
	key := filepath.Clean(target)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}
	return filepath.Join(lm.lockDir, strconv.FormatUint(xxhash.Sum64String(key), 16)+".lock")
}

// AcquireLock takes an exclusive lock on target, polling until timeout or ctx expires.
func (lm *LockManager) AcquireLock(ctx context.Context, target string, timeout time.Duration) (*FileLock, error) {
	if target == "" {
		return nil, ErrTargetRequired
	}
	if err := os.MkdirAll(lm.lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory %s: %w", lm.lockDir, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gate := flock.New(filepath.Join(lm.lockDir, gateFileName))
	if ok, err := gate.TryRLockContext(ctx, shortPollInterval); err != nil || !ok {
		return nil, lm.acquireError(target, timeout, err)
	}
	defer gate.Unlock()

	lockPath := lm.LockPath(target)
	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLockContext(ctx, shortPollInterval)
	if err != nil || !locked {
		return nil, lm.acquireError(target, timeout, err)
	}

	// Cleanup judges staleness by mtime, so every acquisition counts as use.
	now := time.Now()
	if err := os.Chtimes(lockPath, now, now); err != nil {
		lm.logger.Debug("could not touch lock file", zap.String("lock_path", lockPath), zap.Error(err))
	}

	lm.logger.Debug("lock acquired", zap.String("target", target), zap.String("lock_path", lockPath))
	return &FileLock{Target: target, LockPath: lockPath, flock: fileLock}, nil
}

func (lm *LockManager) acquireError(target string, timeout time.Duration, err error) error {
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		lm.logger.Warn("lock timeout", zap.String("target", target), zap.Duration("timeout", timeout))
		return ErrLockTimeout
	}
	return fmt.Errorf("error acquiring lock for %s: %w", target, err)
}

// ReleaseLock releases the given lock. The lock file itself is left in place.
func (lm *LockManager) ReleaseLock(lock *FileLock) error {
	if lock == nil {
		return ErrNilLock
	}
	if lock.flock != nil {
		if err := lock.flock.Unlock(); err != nil {
			return fmt.Errorf("releasing lock for %s: %w", lock.Target, err)
		}
	}
	lm.logger.Debug("lock released", zap.String("target", lock.Target))
	return nil
}

// Cleanup removes lock files in the lock directory that nobody has acquired for maxAge
// and that no one currently holds. It returns the number of files removed. While any
// acquisition is in progress it removes nothing and reports zero.
func (lm *LockManager) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(lm.lockDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	gate := flock.New(filepath.Join(lm.lockDir, gateFileName))
	ok, err := gate.TryLock()
	if err != nil {
		return 0, fmt.Errorf("locking cleanup gate: %w", err)
	}
	if !ok {
		lm.logger.Debug("lock acquisition in progress, skipping cleanup")
		return 0, nil
	}
	defer gate.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".lock" {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(lm.lockDir, e.Name())
		fl := flock.New(path)
		ok, err := fl.TryLock()
		if err != nil || !ok {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		_ = fl.Unlock()
	}
	if removed > 0 {
		lm.logger.Info("removed stale lock files", zap.Int("count", removed))
	}
	return removed, nil
}

var _ LockManagerInterface = (*LockManager)(nil)
