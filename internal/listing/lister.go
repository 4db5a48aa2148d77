// Package listing enumerates directories as typed, metadata-carrying entries, either one
// level at a time, as a flat pre-order sequence, or as a nested tree.
//
// Every operation is all-or-nothing: the first read or stat failure at any depth, or a
// cancelled context, discards whatever was collected and only the error is returned.
// Symbolic links to directories are followed. Cycles through such links are not detected
// unless WithCycleDetection is given, and recursion depth is not bounded.
package listing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	apperrors "file-utils-server/internal/errors"
	"file-utils-server/internal/filesystem"

	"go.uber.org/zap"
)

// ErrCycle is returned when cycle detection is on and a directory is reached again
// below itself.
var ErrCycle = errors.New("directory cycle detected")

// Canonicalizer resolves a path to the form used to recognise revisits.
type Canonicalizer interface {
	EvalSymlinks(path string) (string, error)
}

// Lister reads directories through a DirectoryReader and a StatProvider.
type Lister struct {
	reader filesystem.DirectoryReader
	stat   filesystem.StatProvider
	canon  Canonicalizer
	logger *zap.Logger
}

// Option configures a Lister.
type Option func(*Lister)

// WithCycleDetection makes recursive listings fail with ErrCycle when a directory's
// canonical path equals one of its ancestors'.
func WithCycleDetection(canon Canonicalizer) Option {
	return func(l *Lister) {
		l.canon = canon
	}
}

// WithLogger sets the logger used for per-directory debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Lister) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLister creates a Lister.
func NewLister(reader filesystem.DirectoryReader, stat filesystem.StatProvider, opts ...Option) *Lister {
	l := &Lister{reader: reader, stat: stat, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CycleDetection reports whether revisits are checked.
func (l *Lister) CycleDetection() bool { return l.canon != nil }

// List returns the immediate entries of directory in the order the reader reports them.
// Folder entries have no children.
func (l *Lister) List(ctx context.Context, directory string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := l.reader.ReadDirNames(directory)
	if err != nil {
		return nil, apperrors.NewIOError("read_dir", directory, err)
	}
	l.logger.Debug("read directory", zap.String("path", directory), zap.Int("entries", len(names)))

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(directory, name)
		stats, err := l.stat.GetFileStats(path)
		if err != nil {
			return nil, apperrors.NewIOError("stat", path, err)
		}
		entries = append(entries, newEntry(path, stats))
	}
	return entries, nil
}

func newEntry(path string, stats *filesystem.FileStats) Entry {
	if stats.IsDir {
		return &FolderEntry{Path: path, CreationTime: stats.CreationTime}
	}
	size := stats.Size
	if size < 0 {
		size = 0
	}
	return &FileEntry{
		Path:             path,
		CreationTime:     stats.CreationTime,
		Size:             uint64(size),
		LastModifiedTime: stats.ModTime,
	}
}

// ancestry tracks the canonical paths of the directories currently being expanded.
type ancestry map[string]struct{}

func (l *Lister) enter(a ancestry, dir string) (func(), error) {
	if l.canon == nil {
		return func() {}, nil
	}
	canonical, err := l.canon.EvalSymlinks(dir)
	if err != nil {
		return nil, apperrors.NewIOError("eval_symlinks", dir, err)
	}
	if _, seen := a[canonical]; seen {
		return nil, fmt.Errorf("%w: %s resolves to ancestor %s", ErrCycle, dir, canonical)
	}
	a[canonical] = struct{}{}
	return func() { delete(a, canonical) }, nil
}
