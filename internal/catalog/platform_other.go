//go:build !unix

package catalog

import "os"

// Access falls back to the permission bits when access(2) is unavailable.
func (OSFileSystem) Access(name string) (readable, writable bool) {
	info, err := os.Lstat(name)
	if err != nil {
		return false, false
	}
	perm := info.Mode().Perm()
	return perm&0o444 != 0, perm&0o222 != 0
}

func isCrossDevice(error) bool { return false }
