//go:build darwin

package storage

import (
	"fmt"
	"syscall"
)

// DetectFilesystem names the filesystem holding path, e.g. "apfs" or "smbfs".
func DetectFilesystem(path string) (string, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return "", fmt.Errorf("statfs %s: %w", path, err)
	}
	name := make([]byte, 0, len(st.Fstypename))
	for _, c := range st.Fstypename {
		if c == 0 {
			break
		}
		name = append(name, byte(c))
	}
	return string(name), nil
}
