package naming

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	apperrors "file-utils-server/internal/errors"
	"file-utils-server/internal/filesystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProbe answers from a set of existing paths and records every probe.
type fakeProbe struct {
	existing map[string]bool
	failOn   map[string]error
	probed   []string
}

func newFakeProbe(dir string, names ...string) *fakeProbe {
	p := &fakeProbe{existing: map[string]bool{}, failOn: map[string]error{}}
	for _, n := range names {
		p.existing[filepath.Join(dir, n)] = true
	}
	return p
}

func (p *fakeProbe) FileExists(path string) (bool, error) {
	p.probed = append(p.probed, path)
	if err, ok := p.failOn[path]; ok {
		return false, err
	}
	return p.existing[path], nil
}

// alwaysExists reports every candidate as taken.
type alwaysExists struct{ calls int }

func (a *alwaysExists) FileExists(string) (bool, error) {
	a.calls++
	return true, nil
}

func TestResolver_ResolveFullName(t *testing.T) {
	const dir = "/data"
	tests := []struct {
		name     string
		existing []string
		input    string
		want     string
	}{
		{"free name returned as is", nil, "a.txt", "a.txt"},
		{"first collision", []string{"a.txt"}, "a.txt", "a 2.txt"},
		{"second collision", []string{"a.txt", "a 2.txt"}, "a.txt", "a 3.txt"},
		{"numbered input increments", []string{"backup-name-1.bak", "backup-name-2.bak"}, "backup-name-1.bak", "backup-name-3.bak"},
		{"no extension", []string{"README"}, "README", "README 2"},
		{"only last extension split", []string{"archive.tar.gz"}, "archive.tar.gz", "archive.tar 2.gz"},
		{"dot-prefixed stem keeps its extension", []string{"..txt"}, "..txt", ". 2.txt"},
		{"hidden file has no extension", []string{".env"}, ".env", ".env 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(newFakeProbe(dir, tt.existing...))
			got, err := r.ResolveFullName(context.Background(), dir, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ResolveBaseName(t *testing.T) {
	const dir = "/data"
	probe := newFakeProbe(dir, "report.md", "report 2.md", "report.txt")
	r := NewResolver(probe)

	got, err := r.ResolveBaseName(context.Background(), dir, "report", ".md")
	require.NoError(t, err)
	assert.Equal(t, "report 3", got)

	got, err = r.ResolveBaseName(context.Background(), dir, "report", ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "report", got)

	// The extension is never split off the base name.
	probe = newFakeProbe(dir, "v1.2.log")
	got, err = NewResolver(probe).ResolveBaseName(context.Background(), dir, "v1.2", ".log")
	require.NoError(t, err)
	assert.Equal(t, "v1.3", got)
}

func TestResolver_ResolveFolderName(t *testing.T) {
	const dir = "/data"
	r := NewResolver(newFakeProbe(dir, "archive.tar", "archive.tar 2"))
	got, err := r.ResolveFolderName(context.Background(), dir, "archive.tar")
	require.NoError(t, err)
	assert.Equal(t, "archive.tar 3", got)

	r = NewResolver(newFakeProbe(dir, "archive.tar"))
	got, err = r.ResolveFolderName(context.Background(), dir, "archive.tar")
	require.NoError(t, err)
	assert.Equal(t, "archive.tar 2", got)
}

func TestResolver_ProbeOrder(t *testing.T) {
	const dir = "/data"
	probe := newFakeProbe(dir, "x.txt", "x 2.txt")
	_, err := NewResolver(probe).ResolveFullName(context.Background(), dir, "x.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/x.txt", "/data/x 2.txt", "/data/x 3.txt"}, probe.probed)
}

func TestResolver_ProbeErrorAborts(t *testing.T) {
	const dir = "/data"
	probe := newFakeProbe(dir, "a.txt")
	boom := apperrors.NewIOError("check_exists", "/data/a 2.txt", fmt.Errorf("device error"))
	probe.failOn["/data/a 2.txt"] = boom

	got, err := NewResolver(probe).ResolveFullName(context.Background(), dir, "a.txt")
	require.Error(t, err)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, boom)
	assert.True(t, apperrors.IsIOError(err))
	assert.Len(t, probe.probed, 2, "no probe may follow a failure")
}

func TestResolver_MaxAttempts(t *testing.T) {
	probe := &alwaysExists{}
	var observed []int
	r := NewResolver(probe, WithMaxAttempts(5), WithObserver(func(v Variant, attempts int, err error) {
		assert.Equal(t, VariantFolderName, v)
		assert.ErrorIs(t, err, ErrAttemptsExhausted)
		observed = append(observed, attempts)
	}))

	_, err := r.ResolveFolderName(context.Background(), "/d", "full")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.Equal(t, 5, probe.calls)
	assert.Equal(t, []int{5}, observed)
	assert.Equal(t, 5, r.MaxAttempts())

	assert.Equal(t, 0, NewResolver(probe, WithMaxAttempts(0)).MaxAttempts())
}

func TestResolver_ContextCancellation(t *testing.T) {
	probe := &alwaysExists{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(probe).ResolveFullName(ctx, "/d", "a.txt")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, probe.calls)
}

func TestResolver_InvalidNames(t *testing.T) {
	r := NewResolver(&alwaysExists{})
	ctx := context.Background()
	for _, name := range []string{"", ".", "..", "a/b"} {
		_, err := r.ResolveFullName(ctx, "/d", name)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, "name %q", name)
		_, err = r.ResolveFolderName(ctx, "/d", name)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, "name %q", name)
	}
	_, err := r.ResolveBaseName(ctx, "/d", "a", "/etc")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestResolver_RealDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.txt", "a 2.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.tar"), 0o755))

	r := NewResolver(filesystem.NewDefaultFileSystemAdapter())
	ctx := context.Background()

	got, err := r.ResolveFullName(ctx, dir, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a 3.txt", got)

	got, err = r.ResolveFolderName(ctx, dir, "archive.tar")
	require.NoError(t, err)
	assert.Equal(t, "archive.tar 2", got)

	got, err = r.ResolveBaseName(ctx, dir, "a", ".txt")
	require.NoError(t, err)
	assert.Equal(t, "a 3", got)
}
