package catalog

import (
	"errors"
	"fmt"
	"io/fs"
)

// IsDirectory reports whether path is a directory. Symlinks, including
// symlinks to directories, are not directories.
func IsDirectory(fsys FileSystem, path string) (bool, error) {
	info, err := lstat(fsys, path)
	if err != nil || info == nil {
		return false, err
	}
	return info.IsDir(), nil
}

// IsRegularFile reports whether path is a regular file.
func IsRegularFile(fsys FileSystem, path string) (bool, error) {
	info, err := lstat(fsys, path)
	if err != nil || info == nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// IsSymlink reports whether path is a symbolic link.
func IsSymlink(fsys FileSystem, path string) (bool, error) {
	info, err := lstat(fsys, path)
	if err != nil || info == nil {
		return false, err
	}
	return info.Mode()&fs.ModeSymlink != 0, nil
}

// Exists reports whether anything, including a dangling symlink, exists at path.
func Exists(fsys FileSystem, path string) (bool, error) {
	info, err := lstat(fsys, path)
	return info != nil, err
}

// IsReadableOrWritable reports whether the current process can read or write path.
func IsReadableOrWritable(fsys FileSystem, path string) (bool, error) {
	if err := mustBeAbsolute(path); err != nil {
		return false, err
	}
	readable, writable := fsys.Access(path)
	return readable || writable, nil
}

// FileSize returns the size in bytes of the entry at path.
func FileSize(fsys FileSystem, path string) (int64, error) {
	info, err := lstat(fsys, path)
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, fmt.Errorf("%w: could not open file %s", ErrNotFound, path)
	}
	return info.Size(), nil
}

// lstat returns a nil info and nil error when path does not exist.
func lstat(fsys FileSystem, path string) (fs.FileInfo, error) {
	if err := mustBeAbsolute(path); err != nil {
		return nil, err
	}
	info, err := fsys.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	}
	return info, nil
}
