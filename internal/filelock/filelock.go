// Package filelock serializes access to shared files between processes
// using advisory flock(2) locks.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Lock acquires an exclusive lock on path, creating the file and its parent
// directory when missing. It blocks until the lock is granted. The returned
// unlock function releases the lock and closes the file.
func Lock(path string) (unlock func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
