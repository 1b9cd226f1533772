package catalog

import (
	"fmt"
	"io/fs"
	"os"

	krfs "github.com/kr/fs"
	cp "github.com/otiai10/copy"
)

// Walker iterates a directory tree one entry at a time. Directories are
// visited before their contents and symlinks are never followed. A failed
// entry is reported through Err and does not stop the walk.
type Walker interface {
	Step() bool
	Path() string
	Stat() fs.FileInfo
	Err() error
	SkipDir()
}

// FileSystem abstracts the filesystem primitives the catalog depends on so
// tests can inject failures.
type FileSystem interface {
	Lstat(name string) (fs.FileInfo, error)
	Access(name string) (readable, writable bool)
	Walk(root string) Walker
	// Remove deletes a file or an empty directory.
	Remove(name string) error
	// Rename moves oldpath to newpath without following symlinks. An
	// existing newpath is an error.
	Rename(oldpath, newpath string) error
	// CopyFile copies a single file with its mode and timestamps. An
	// existing dst is an error.
	CopyFile(src, dst string) error
	// CopyDir creates dst with the mode and timestamps of the directory src.
	// The contents of src are not copied.
	CopyDir(src, dst string) error
}

// OSFileSystem implements FileSystem using the local OS filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

func (OSFileSystem) Walk(root string) Walker {
	return krfs.Walk(root)
}

func (OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// osRename is replaced in tests to simulate cross-device renames.
var osRename = os.Rename

// Rename falls back to copy and remove when a regular file is moved across
// filesystems. Directories are never moved that way.
func (OSFileSystem) Rename(oldpath, newpath string) error {
	if err := mustNotExist("rename", newpath); err != nil {
		return err
	}
	err := osRename(oldpath, newpath)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	info, statErr := os.Lstat(oldpath)
	if statErr != nil || !info.Mode().IsRegular() {
		return err
	}
	return moveAcrossDevices(oldpath, newpath)
}

// moveAcrossDevices copies oldpath to newpath with its attributes, then
// removes oldpath. On failure the partial copy is removed and oldpath is
// left in place.
func moveAcrossDevices(oldpath, newpath string) error {
	if err := cp.Copy(oldpath, newpath, cp.Options{PreserveTimes: true, Sync: true}); err != nil {
		os.Remove(newpath)
		return fmt.Errorf("copy across devices: %w", err)
	}
	if err := os.Remove(oldpath); err != nil {
		os.Remove(newpath)
		return fmt.Errorf("remove after copy across devices: %w", err)
	}
	return nil
}

func (OSFileSystem) CopyFile(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "copy", Path: src, Err: fmt.Errorf("is a directory")}
	}
	if err := mustNotExist("copy", dst); err != nil {
		return err
	}
	return cp.Copy(src, dst, cp.Options{
		OnSymlink:     func(string) cp.SymlinkAction { return cp.Shallow },
		PreserveTimes: true,
	})
}

func (OSFileSystem) CopyDir(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "copy", Path: src, Err: fmt.Errorf("not a directory")}
	}
	if err := mustNotExist("copy", dst); err != nil {
		return err
	}
	return cp.Copy(src, dst, cp.Options{
		OnSymlink: func(string) cp.SymlinkAction { return cp.Skip },
		Skip: func(_ os.FileInfo, path, _ string) (bool, error) {
			return path != src, nil
		},
		PreserveTimes: true,
	})
}

func mustNotExist(op, path string) error {
	if _, err := os.Lstat(path); err == nil {
		return &fs.PathError{Op: op, Path: path, Err: fs.ErrExist}
	}
	return nil
}
