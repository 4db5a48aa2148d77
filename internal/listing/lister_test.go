package listing

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "file-utils-server/internal/errors"
	"file-utils-server/internal/filesystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFS is an in-memory tree. Directory order is the insertion order of children,
// which lets tests control what the reader reports.
type memFS struct {
	dirs      map[string][]string
	files     map[string]int64
	links     map[string]string // directory symlinks: path -> target
	statFail  map[string]error
	readFail  map[string]error
	statCalls int
}

func newMemFS() *memFS {
	return &memFS{
		dirs:     map[string][]string{"/root": nil},
		files:    map[string]int64{},
		links:    map[string]string{},
		statFail: map[string]error{},
		readFail: map[string]error{},
	}
}

func (m *memFS) addDir(p string) {
	m.dirs[p] = nil
	parent := path.Dir(p)
	m.dirs[parent] = append(m.dirs[parent], path.Base(p))
}

func (m *memFS) addFile(p string, size int64) {
	m.files[p] = size
	parent := path.Dir(p)
	m.dirs[parent] = append(m.dirs[parent], path.Base(p))
}

func (m *memFS) addLink(p, target string) {
	m.links[p] = target
	parent := path.Dir(p)
	m.dirs[parent] = append(m.dirs[parent], path.Base(p))
}

func (m *memFS) resolve(p string) string {
	for link, target := range m.links {
		if p == link || strings.HasPrefix(p, link+"/") {
			return m.resolve(target + strings.TrimPrefix(p, link))
		}
	}
	return p
}

func (m *memFS) ReadDirNames(p string) ([]string, error) {
	if err, ok := m.readFail[p]; ok {
		return nil, err
	}
	names, ok := m.dirs[m.resolve(p)]
	if !ok {
		return nil, apperrors.NewIOError("read_dir", p, os.ErrNotExist)
	}
	return append([]string(nil), names...), nil
}

func (m *memFS) GetFileStats(p string) (*filesystem.FileStats, error) {
	m.statCalls++
	if err, ok := m.statFail[p]; ok {
		return nil, err
	}
	r := m.resolve(p)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if _, ok := m.dirs[r]; ok {
		return &filesystem.FileStats{IsDir: true, CreationTime: created, ModTime: created}, nil
	}
	if size, ok := m.files[r]; ok {
		return &filesystem.FileStats{Size: size, CreationTime: created, ModTime: created.Add(time.Hour)}, nil
	}
	return nil, apperrors.NewIOError("stat", p, os.ErrNotExist)
}

func (m *memFS) EvalSymlinks(p string) (string, error) { return m.resolve(p), nil }

func paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.EntryPath()
	}
	return out
}

// sampleFS builds /root/{f1, d1/{f2}} with the reader reporting f1 first.
func sampleFS() *memFS {
	m := newMemFS()
	m.addFile("/root/f1", 10)
	m.addDir("/root/d1")
	m.addFile("/root/d1/f2", 20)
	return m
}

func TestLister_List(t *testing.T) {
	m := sampleFS()
	entries, err := NewLister(m, m).List(context.Background(), "/root")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	file, ok := entries[0].(*FileEntry)
	require.True(t, ok)
	assert.Equal(t, "/root/f1", file.Path)
	assert.EqualValues(t, 10, file.Size)
	assert.True(t, file.LastModifiedTime.After(file.CreationTime))

	folder, ok := entries[1].(*FolderEntry)
	require.True(t, ok)
	assert.Equal(t, "/root/d1", folder.Path)
	assert.Empty(t, folder.Children)
}

func TestLister_ListFailsFast(t *testing.T) {
	m := sampleFS()
	m.addFile("/root/f3", 1)
	m.statFail["/root/d1"] = apperrors.NewIOError("stat", "/root/d1", fmt.Errorf("permission denied"))

	entries, err := NewLister(m, m).List(context.Background(), "/root")
	require.Error(t, err)
	assert.Nil(t, entries)
	assert.True(t, apperrors.IsIOError(err))
	assert.Equal(t, 2, m.statCalls, "no stat may follow a failure")
}

func TestLister_ListReadError(t *testing.T) {
	m := sampleFS()
	m.readFail["/root"] = fmt.Errorf("EIO")
	entries, err := NewLister(m, m).List(context.Background(), "/root")
	assert.Nil(t, entries)
	assert.True(t, apperrors.IsIOError(err))
}

func TestLister_ListRecursively(t *testing.T) {
	t.Run("file first", func(t *testing.T) {
		m := sampleFS()
		entries, err := NewLister(m, m).ListRecursively(context.Background(), "/root")
		require.NoError(t, err)
		assert.Equal(t, []string{"/root/f1", "/root/d1", "/root/d1/f2"}, paths(entries))
	})

	t.Run("folder first", func(t *testing.T) {
		m := newMemFS()
		m.addDir("/root/d1")
		m.addFile("/root/d1/f2", 20)
		m.addFile("/root/f1", 10)
		entries, err := NewLister(m, m).ListRecursively(context.Background(), "/root")
		require.NoError(t, err)
		assert.Equal(t, []string{"/root/d1", "/root/d1/f2", "/root/f1"}, paths(entries))
	})

	t.Run("deep nesting keeps pre-order", func(t *testing.T) {
		m := newMemFS()
		m.addDir("/root/a")
		m.addDir("/root/a/b")
		m.addFile("/root/a/b/c.txt", 1)
		m.addFile("/root/a/d.txt", 1)
		m.addDir("/root/e")
		m.addFile("/root/z.txt", 1)
		entries, err := NewLister(m, m).ListRecursively(context.Background(), "/root")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"/root/a", "/root/a/b", "/root/a/b/c.txt", "/root/a/d.txt", "/root/e", "/root/z.txt",
		}, paths(entries))
	})

	t.Run("empty root", func(t *testing.T) {
		m := newMemFS()
		entries, err := NewLister(m, m).ListRecursively(context.Background(), "/root")
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})
}

func TestLister_ListRecursivelyInTree(t *testing.T) {
	m := sampleFS()
	tree, err := NewLister(m, m).ListRecursivelyInTree(context.Background(), "/root")
	require.NoError(t, err)
	assert.Equal(t, "/root", tree.Path)
	require.Len(t, tree.Children, 2)

	d1, ok := tree.Children[1].(*FolderEntry)
	require.True(t, ok)
	require.Len(t, d1.Children, 1)
	assert.Equal(t, "/root/d1/f2", d1.Children[0].EntryPath())
	assert.Equal(t, 3, tree.Count())
}

func TestLister_TreeOrderMatchesFlatOrder(t *testing.T) {
	m := newMemFS()
	m.addDir("/root/x")
	m.addFile("/root/x/1", 1)
	m.addDir("/root/x/y")
	m.addFile("/root/x/y/2", 1)
	m.addFile("/root/3", 1)
	m.addDir("/root/w")
	l := NewLister(m, m)

	flat, err := l.ListRecursively(context.Background(), "/root")
	require.NoError(t, err)
	tree, err := l.ListRecursivelyInTree(context.Background(), "/root")
	require.NoError(t, err)

	var walked []string
	tree.Walk(func(e Entry) bool {
		walked = append(walked, e.EntryPath())
		return true
	})
	assert.Equal(t, paths(flat), walked)
}

func TestLister_DeepFailureDiscardsEverything(t *testing.T) {
	m := sampleFS()
	m.statFail["/root/d1/f2"] = apperrors.NewIOError("stat", "/root/d1/f2", fmt.Errorf("I/O error"))
	l := NewLister(m, m)

	flat, err := l.ListRecursively(context.Background(), "/root")
	assert.Nil(t, flat)
	assert.True(t, apperrors.IsIOError(err))

	tree, err := l.ListRecursivelyInTree(context.Background(), "/root")
	assert.Nil(t, tree)
	assert.True(t, apperrors.IsIOError(err))
}

func TestLister_TreeRootMustBeDirectory(t *testing.T) {
	m := sampleFS()
	_, err := NewLister(m, m).ListRecursivelyInTree(context.Background(), "/root/f1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = NewLister(m, m).ListRecursivelyInTree(context.Background(), "/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLister_Cancellation(t *testing.T) {
	m := sampleFS()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLister(m, m)

	_, err := l.ListRecursively(ctx, "/root")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = l.ListRecursivelyInTree(ctx, "/root")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLister_CycleDetection(t *testing.T) {
	m := sampleFS()
	m.addLink("/root/d1/loop", "/root")

	l := NewLister(m, m, WithCycleDetection(m))
	assert.True(t, l.CycleDetection())

	_, err := l.ListRecursively(context.Background(), "/root")
	assert.ErrorIs(t, err, ErrCycle)
	_, err = l.ListRecursivelyInTree(context.Background(), "/root")
	assert.ErrorIs(t, err, ErrCycle)
}

func TestLister_CycleDetectionAllowsSiblingLinks(t *testing.T) {
	m := sampleFS()
	m.addDir("/root/other")
	m.addLink("/root/other/alias", "/root/d1")

	entries, err := NewLister(m, m, WithCycleDetection(m)).ListRecursively(context.Background(), "/root")
	require.NoError(t, err)
	assert.Contains(t, paths(entries), "/root/other/alias/f2")
}

func TestLister_RealDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f1"), []byte("abc"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "d1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "d1", "f2"), []byte("hello"), 0o644))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "d1", "up")))

	adapter := filesystem.NewDefaultFileSystemAdapter()
	l := NewLister(adapter, adapter, WithCycleDetection(adapter))

	_, err := l.ListRecursively(context.Background(), root)
	require.ErrorIs(t, err, ErrCycle)

	require.NoError(t, os.Remove(filepath.Join(root, "d1", "up")))
	entries, err := l.ListRecursively(context.Background(), root)
	require.NoError(t, err)

	var rel []string
	for _, e := range entries {
		r, err := filepath.Rel(root, e.EntryPath())
		require.NoError(t, err)
		rel = append(rel, r)
	}
	assert.Equal(t, []string{"d1", filepath.Join("d1", "f2"), "f1"}, rel)

	tree, err := l.ListRecursivelyInTree(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)
	d1 := tree.Children[0].(*FolderEntry)
	require.Len(t, d1.Children, 1)
	assert.EqualValues(t, 5, d1.Children[0].(*FileEntry).Size)
}
