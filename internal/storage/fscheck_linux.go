//go:build linux

package storage

import (
	"fmt"
	"syscall"
)

// statfs f_type values for the mounts in remoteTypes, from linux/magic.h.
var linuxMagic = map[uint64]string{
	0x6969:     "nfs",
	0x517B:     "smbfs",
	0xFF534D42: "cifs",
	0xFE534D42: "smb2",
	0x01021997: "9p",
	0x00C36400: "ceph",
	0x5346414F: "afs",
}

// DetectFilesystem names the filesystem holding path. Types outside linuxMagic
// come back as their hex magic number.
func DetectFilesystem(path string) (string, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return "", fmt.Errorf("statfs %s: %w", path, err)
	}
	magic := uint64(st.Type)
	if name, ok := linuxMagic[magic]; ok {
		return name, nil
	}
	return fmt.Sprintf("0x%x", magic), nil
}
