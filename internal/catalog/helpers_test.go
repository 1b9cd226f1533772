package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const mb = 1024 * 1024

// makeTree creates the entries described by layout below a fresh temporary
// directory. Keys ending in "/" are directories; other keys are sparse files
// of the given size.
func makeTree(t *testing.T, layout map[string]int64) string {
	t.Helper()
	root := t.TempDir()
	for rel, size := range layout {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		f, err := os.Create(full)
		require.NoError(t, err)
		require.NoError(t, f.Truncate(size))
		require.NoError(t, f.Close())
	}
	return root
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCatalog(t *testing.T, root string, opts Options) *Catalog {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	c, err := New(context.Background(), root, opts)
	require.NoError(t, err)
	return c
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Lstat(path)
	if err == nil {
		return true
	}
	require.True(t, errors.Is(err, os.ErrNotExist), "unexpected lstat error: %v", err)
	return false
}

// failingFS injects failures into selected primitives of the OS filesystem.
// The silent variants report success without touching the disk.
type failingFS struct {
	OSFileSystem
	failCopy     bool
	failRename   bool
	failRemove   bool
	silentCopy   bool
	silentRemove bool
}

var errInjected = errors.New("injected failure")

func (f failingFS) CopyFile(src, dst string) error {
	if f.failCopy {
		return errInjected
	}
	if f.silentCopy {
		return nil
	}
	return f.OSFileSystem.CopyFile(src, dst)
}

func (f failingFS) CopyDir(src, dst string) error {
	if f.failCopy {
		return errInjected
	}
	if f.silentCopy {
		return nil
	}
	return f.OSFileSystem.CopyDir(src, dst)
}

func (f failingFS) Rename(oldpath, newpath string) error {
	if f.failRename {
		return errInjected
	}
	return f.OSFileSystem.Rename(oldpath, newpath)
}

func (f failingFS) Remove(name string) error {
	if f.failRemove {
		return errInjected
	}
	if f.silentRemove {
		return nil
	}
	return f.OSFileSystem.Remove(name)
}

// faultyWalkFS reports a walk error for the entries in failPaths and denies
// read and write access to the entries in deniedPaths.
type faultyWalkFS struct {
	OSFileSystem
	failPaths   map[string]bool
	deniedPaths map[string]bool
}

func (f faultyWalkFS) Walk(root string) Walker {
	return &faultyWalker{Walker: f.OSFileSystem.Walk(root), failPaths: f.failPaths}
}

func (f faultyWalkFS) Access(name string) (readable, writable bool) {
	if f.deniedPaths[name] {
		return false, false
	}
	return f.OSFileSystem.Access(name)
}

type faultyWalker struct {
	Walker
	failPaths map[string]bool
}

func (w *faultyWalker) Err() error {
	if w.failPaths[w.Path()] {
		return errInjected
	}
	return w.Walker.Err()
}
