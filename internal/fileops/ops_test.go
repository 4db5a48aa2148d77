package fileops

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperrors "file-utils-server/internal/errors"
	"file-utils-server/internal/filesystem"
	"file-utils-server/internal/lock"
	"file-utils-server/internal/naming"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOperations(t *testing.T) *Operations {
	t.Helper()
	fs := filesystem.NewDefaultFileSystemAdapter()
	return NewOperations(fs, naming.NewResolver(fs, naming.WithMaxAttempts(100)),
		lock.NewLockManager(t.TempDir(), nil), WithLockTimeout(time.Second))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBackup(t *testing.T) {
	ops := newTestOperations(t)
	src := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, src, "v1")
	backups := t.TempDir()

	first, err := ops.Backup(context.Background(), src, backups, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backups, "notes.txt"), first)

	writeFile(t, src, "v2")
	second, err := ops.Backup(context.Background(), src, backups, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backups, "notes 2.txt"), second)

	got, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))
	got, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestBackup_Concurrent(t *testing.T) {
	ops := newTestOperations(t)
	src := filepath.Join(t.TempDir(), "a.log")
	writeFile(t, src, "data")
	backups := t.TempDir()

	const n = 8
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := ops.Backup(context.Background(), src, backups, "a.log")
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, p := range results {
		assert.False(t, seen[p], "duplicate backup path %s", p)
		seen[p] = true
	}
	entries, err := os.ReadDir(backups)
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

func TestBackup_Errors(t *testing.T) {
	ops := newTestOperations(t)
	backups := t.TempDir()

	_, err := ops.Backup(context.Background(), filepath.Join(t.TempDir(), "missing"), backups, "x.txt")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ops.Backup(context.Background(), "/etc/hostname", backups, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	src := filepath.Join(t.TempDir(), "f")
	writeFile(t, src, "x")
	capped := NewOperations(filesystem.NewDefaultFileSystemAdapter(),
		naming.NewResolver(filesystem.NewDefaultFileSystemAdapter(), naming.WithMaxAttempts(1)), nil)
	_, err = capped.Backup(context.Background(), src, backups, "f")
	require.NoError(t, err)
	_, err = capped.Backup(context.Background(), src, backups, "f")
	assert.ErrorIs(t, err, naming.ErrAttemptsExhausted)
}

func TestBackup_LockTimeout(t *testing.T) {
	locks := lock.NewLockManager(t.TempDir(), nil)
	fs := filesystem.NewDefaultFileSystemAdapter()
	ops := NewOperations(fs, naming.NewResolver(fs), locks, WithLockTimeout(20*time.Millisecond))
	backups := t.TempDir()

	held, err := locks.AcquireLock(context.Background(), backups, time.Second)
	require.NoError(t, err)
	defer locks.ReleaseLock(held)

	_, err = ops.Backup(context.Background(), "/etc/hostname", backups, "h")
	assert.ErrorIs(t, err, lock.ErrLockTimeout)
}

func TestCopyFileWhenTargetAbsent(t *testing.T) {
	ops := newTestOperations(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, src, "new")

	copied, err := ops.CopyFileWhenTargetAbsent(context.Background(), src, dst)
	require.NoError(t, err)
	assert.True(t, copied)

	writeFile(t, src, "newer")
	copied, err = ops.CopyFileWhenTargetAbsent(context.Background(), src, dst)
	require.NoError(t, err)
	assert.False(t, copied)
	got, _ := os.ReadFile(dst)
	assert.Equal(t, "new", string(got))
}

func TestRenameFileWhenTargetAbsent(t *testing.T) {
	ops := newTestOperations(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, src, "a")
	writeFile(t, dst, "b")

	renamed, err := ops.RenameFileWhenTargetAbsent(context.Background(), src, dst)
	require.NoError(t, err)
	assert.False(t, renamed)
	assert.FileExists(t, src)

	require.NoError(t, os.Remove(dst))
	renamed, err = ops.RenameFileWhenTargetAbsent(context.Background(), src, dst)
	require.NoError(t, err)
	assert.True(t, renamed)
	assert.NoFileExists(t, src)
	got, _ := os.ReadFile(dst)
	assert.Equal(t, "a", string(got))
}

func TestRemoveFileIgnoreNotExist(t *testing.T) {
	ops := newTestOperations(t)
	path := filepath.Join(t.TempDir(), "f")
	writeFile(t, path, "x")

	removed, err := ops.RemoveFileIgnoreNotExist(path)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = ops.RemoveFileIgnoreNotExist(path)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestExistsAllAny(t *testing.T) {
	ops := newTestOperations(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	missing := filepath.Join(dir, "missing")
	writeFile(t, a, "")
	writeFile(t, b, "")
	ctx := context.Background()

	ok, err := ops.Exists(a)
	require.NoError(t, err)
	assert.True(t, ok)

	all, absent, err := ops.ExistsAll(ctx, []string{a, b})
	require.NoError(t, err)
	assert.True(t, all)
	assert.Empty(t, absent)

	all, absent, err = ops.ExistsAll(ctx, []string{a, missing, b})
	require.NoError(t, err)
	assert.False(t, all)
	assert.Equal(t, missing, absent)

	found, present, err := ops.ExistsAny(ctx, []string{missing, b, a})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, b, present)

	found, _, err = ops.ExistsAny(ctx, []string{missing})
	require.NoError(t, err)
	assert.False(t, found)

	all, _, err = ops.ExistsAll(ctx, nil)
	require.NoError(t, err)
	assert.True(t, all)

	_, _, err = ops.ExistsAll(ctx, []string{filepath.Join(a, "child")})
	assert.True(t, apperrors.IsIOError(err))
}
