package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNetworkFilesystem is wrapped by every *RemoteMountError.
var ErrNetworkFilesystem = errors.New("network filesystem")

// remoteTypes are the mount types a database must not be rebuilt on: rename
// and file locking are not reliably atomic across them.
var remoteTypes = map[string]bool{
	"9p":     true,
	"afpfs":  true,
	"afs":    true,
	"ceph":   true,
	"cifs":   true,
	"nfs":    true,
	"smb2":   true,
	"smbfs":  true,
	"webdav": true,
}

// FilesystemDetector names the filesystem holding an existing path.
type FilesystemDetector func(path string) (string, error)

// RemoteMountError reports a directory found on a network mount.
type RemoteMountError struct {
	Dir    string
	FSType string
}

func (e *RemoteMountError) Error() string {
	return fmt.Sprintf("%s is on network filesystem %s", e.Dir, e.FSType)
}

func (e *RemoteMountError) Unwrap() error { return ErrNetworkFilesystem }

// CheckLocalDir returns a *RemoteMountError when dir, or the closest ancestor
// that exists yet, is on a network mount.
func CheckLocalDir(dir string) error {
	return CheckLocalDirWith(dir, DetectFilesystem)
}

// CheckLocalDirWith is CheckLocalDir with a caller-supplied detector.
func CheckLocalDirWith(dir string, detect FilesystemDetector) error {
	if dir == "" {
		return fmt.Errorf("directory is empty")
	}
	base, err := existingAncestor(dir)
	if err != nil {
		return err
	}
	fsType, err := detect(base)
	if err != nil {
		return fmt.Errorf("detect filesystem of %s: %w", base, err)
	}
	if remoteTypes[strings.ToLower(strings.TrimSpace(fsType))] {
		return &RemoteMountError{Dir: dir, FSType: fsType}
	}
	return nil
}

// existingAncestor walks up from dir until it reaches something that exists.
func existingAncestor(dir string) (string, error) {
	p, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		_, err := os.Stat(p)
		switch {
		case err == nil:
			return p, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", fmt.Errorf("no existing ancestor of %s", dir)
		}
		p = parent
	}
}
