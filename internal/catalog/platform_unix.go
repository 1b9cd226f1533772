//go:build unix

package catalog

import (
	"errors"

	"golang.org/x/sys/unix"
)

func (OSFileSystem) Access(name string) (readable, writable bool) {
	return unix.Access(name, unix.R_OK) == nil, unix.Access(name, unix.W_OK) == nil
}

// isCrossDevice reports whether a rename failed because its ends live on
// different filesystems.
func isCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
