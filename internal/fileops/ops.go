// Package fileops holds file-level helpers built on the naming resolver: backups into a
// free name, copy and rename that never overwrite, and multi-path existence checks.
//
// Allocate-then-create sequences run under an advisory lock on the target directory, so
// cooperating processes sharing a lock directory never pick the same name. Copies use
// exclusive create, so a process that ignores the lock still cannot be overwritten.
package fileops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"file-utils-server/internal/filesystem"
	"file-utils-server/internal/lock"
	"file-utils-server/internal/naming"

	"go.uber.org/zap"
)

const (
	// DefaultLockTimeout bounds how long a directory lock is waited for.
	DefaultLockTimeout = 5 * time.Second

	// maxCreateRetries is how many freshly resolved names Backup tries when the
	// chosen one is created by someone else between probe and copy.
	maxCreateRetries = 3
)

// Operations performs the file helpers against a FileSystemAdapter.
type Operations struct {
	fs          filesystem.FileSystemAdapter
	resolver    *naming.Resolver
	locks       lock.LockManagerInterface
	lockTimeout time.Duration
	logger      *zap.Logger
}

// Option configures Operations.
type Option func(*Operations)

// WithLockTimeout overrides DefaultLockTimeout.
func WithLockTimeout(d time.Duration) Option {
	return func(o *Operations) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Operations) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOperations wires the helpers together. locks may be nil, in which case no
// directory locking takes place.
func NewOperations(fs filesystem.FileSystemAdapter, resolver *naming.Resolver, locks lock.LockManagerInterface, opts ...Option) *Operations {
	o := &Operations{
		fs:          fs,
		resolver:    resolver,
		locks:       locks,
		lockTimeout: DefaultLockTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Operations) withDirLock(ctx context.Context, dir string, fn func() error) error {
	if o.locks == nil {
		return fn()
	}
	l, err := o.locks.AcquireLock(ctx, dir, o.lockTimeout)
	if err != nil {
		return fmt.Errorf("locking %s: %w", dir, err)
	}
	defer func() {
		if err := o.locks.ReleaseLock(l); err != nil {
			o.logger.Warn("failed to release directory lock", zap.String("dir", dir), zap.Error(err))
		}
	}()
	return fn()
}

// Backup copies source into targetDir under a name derived from targetName that is not
// yet taken ("notes.txt", "notes 2.txt", ...), and returns the backup's path.
func (o *Operations) Backup(ctx context.Context, source, targetDir, targetName string) (string, error) {
	var backupPath string
	err := o.withDirLock(ctx, targetDir, func() error {
		for try := 0; ; try++ {
			name, err := o.resolver.ResolveFullName(ctx, targetDir, targetName)
			if err != nil {
				return err
			}
			candidate := filepath.Join(targetDir, name)
			err = o.fs.CopyFileExclusive(source, candidate)
			if err == nil {
				backupPath = candidate
				return nil
			}
			if !errors.Is(err, os.ErrExist) || try+1 >= maxCreateRetries {
				return err
			}
			o.logger.Debug("backup name taken before copy, resolving again", zap.String("path", candidate))
		}
	})
	if err != nil {
		return "", err
	}
	o.logger.Info("backup created", zap.String("source", source), zap.String("backup", backupPath))
	return backupPath, nil
}

// CopyFileWhenTargetAbsent copies source to target unless target exists. It reports
// whether the copy happened.
func (o *Operations) CopyFileWhenTargetAbsent(ctx context.Context, source, target string) (bool, error) {
	copied := false
	err := o.withDirLock(ctx, filepath.Dir(target), func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := o.fs.CopyFileExclusive(source, target)
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		if err != nil {
			return err
		}
		copied = true
		return nil
	})
	return copied, err
}

// RenameFileWhenTargetAbsent moves source to target unless target exists. It reports
// whether the rename happened.
func (o *Operations) RenameFileWhenTargetAbsent(ctx context.Context, source, target string) (bool, error) {
	renamed := false
	err := o.withDirLock(ctx, filepath.Dir(target), func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		exists, err := o.fs.FileExists(target)
		if err != nil || exists {
			return err
		}
		if err := o.fs.Rename(source, target); err != nil {
			return err
		}
		renamed = true
		return nil
	})
	return renamed, err
}

// RemoveFileIgnoreNotExist deletes path. A missing file is not an error; removed is
// false in that case.
func (o *Operations) RemoveFileIgnoreNotExist(path string) (removed bool, err error) {
	if err := o.fs.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Exists reports whether path exists.
func (o *Operations) Exists(path string) (bool, error) {
	return o.fs.FileExists(path)
}

// ExistsAll probes paths in order and stops at the first missing one, which it returns.
func (o *Operations) ExistsAll(ctx context.Context, paths []string) (all bool, firstAbsent string, err error) {
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return false, "", err
		}
		exists, err := o.fs.FileExists(p)
		if err != nil {
			return false, "", err
		}
		if !exists {
			return false, p, nil
		}
	}
	return true, "", nil
}

// ExistsAny probes paths in order and stops at the first present one, which it returns.
func (o *Operations) ExistsAny(ctx context.Context, paths []string) (found bool, firstPresent string, err error) {
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return false, "", err
		}
		exists, err := o.fs.FileExists(p)
		if err != nil {
			return false, "", err
		}
		if exists {
			return true, p, nil
		}
	}
	return false, "", nil
}
