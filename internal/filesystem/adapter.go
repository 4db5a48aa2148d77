package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "file-utils-server/internal/errors"
)

// FileStats holds the metadata snapshot of a single entry.
type FileStats struct {
	Size         int64
	IsDir        bool
	CreationTime time.Time
	ModTime      time.Time // last content modification, not metadata change
	Mode         os.FileMode
}

// ExistenceProbe reports whether an entry exists. Absence is (false, nil); any other
// failure to complete the check is returned as an error.
type ExistenceProbe interface {
	FileExists(path string) (bool, error)
}

// StatProvider returns the metadata of an entry.
type StatProvider interface {
	GetFileStats(path string) (*FileStats, error)
}

// DirectoryReader returns the names of the immediate entries of a directory.
type DirectoryReader interface {
	ReadDirNames(path string) ([]string, error)
}

// FileSystemAdapter defines an interface for interacting with the file system.
// This allows for easier testing and potential future extensions (e.g., virtual file systems).
type FileSystemAdapter interface {
	ExistenceProbe
	StatProvider
	DirectoryReader
	EvalSymlinks(path string) (string, error)
	GetLinkStats(path string) (*FileStats, error)
	OpenFile(path string) (io.ReadCloser, error)
	CopyFileExclusive(src, dst string) error
	Rename(src, dst string) error
	Remove(path string) error
}

// DefaultFileSystemAdapter is the standard implementation of FileSystemAdapter using the os package.
type DefaultFileSystemAdapter struct{}

// NewDefaultFileSystemAdapter creates a new DefaultFileSystemAdapter.
func NewDefaultFileSystemAdapter() *DefaultFileSystemAdapter {
	return &DefaultFileSystemAdapter{}
}

// Ensure DefaultFileSystemAdapter implements FileSystemAdapter
var _ FileSystemAdapter = (*DefaultFileSystemAdapter)(nil)

// FileExists checks if an entry exists. Lstat is used so that a dangling symlink
// still counts as an occupied name.
func (fs *DefaultFileSystemAdapter) FileExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, apperrors.NewIOError("check_exists", path, err)
}

// GetFileStats retrieves statistics for a given entry, following symlinks.
func (fs *DefaultFileSystemAdapter) GetFileStats(path string) (*FileStats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewIOError("stat", path, err)
	}
	return statsFromInfo(path, info), nil
}

// GetLinkStats is GetFileStats without following a final symlink.
func (fs *DefaultFileSystemAdapter) GetLinkStats(path string) (*FileStats, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, apperrors.NewIOError("lstat", path, err)
	}
	return statsFromInfo(path, info), nil
}

func statsFromInfo(path string, info os.FileInfo) *FileStats {
	return &FileStats{
		Size:         info.Size(),
		IsDir:        info.IsDir(),
		CreationTime: creationTime(path, info),
		ModTime:      info.ModTime(),
		Mode:         info.Mode().Perm(),
	}
}

// ReadDirNames lists the names in a directory, sorted by name. "." and ".." are never returned.
func (fs *DefaultFileSystemAdapter) ReadDirNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("read_dir", path, err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, apperrors.NewIOError("read_dir", path, err)
	}
	sort.Strings(names)
	return names, nil
}

// EvalSymlinks evaluates symbolic links for the given path.
func (fs *DefaultFileSystemAdapter) EvalSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", apperrors.NewIOError("eval_symlinks", path, err)
	}
	return resolved, nil
}

// OpenFile opens a file for reading.
func (fs *DefaultFileSystemAdapter) OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("open", path, err)
	}
	return f, nil
}

// CopyFileExclusive copies src to dst, failing with an error wrapping os.ErrExist when dst
// is already present. The destination keeps the source's permission bits. On failure the
// partially written destination is removed.
func (fs *DefaultFileSystemAdapter) CopyFileExclusive(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return apperrors.NewIOError("copy_open_source", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return apperrors.NewIOError("copy_stat_source", src, err)
	}
	if info.IsDir() {
		return apperrors.InvalidArgumentf("source %s is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return apperrors.NewIOError("copy_create_target", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return apperrors.NewIOError("copy", dst, fmt.Errorf("copying from %s: %w", src, err))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return apperrors.NewIOError("copy_close_target", dst, err)
	}
	return nil
}

// Rename moves src to dst.
func (fs *DefaultFileSystemAdapter) Rename(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return apperrors.NewIOError("rename", src, err)
	}
	return nil
}

// Remove deletes a single file or empty directory.
func (fs *DefaultFileSystemAdapter) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return apperrors.NewIOError("remove", path, err)
	}
	return nil
}
