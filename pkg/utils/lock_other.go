//go:build !unix

package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrLocked is returned by LockFile when another process holds the lock.
var ErrLocked = errors.New("lock held by another process")

// FileLock records the owner pid without an advisory lock; platforms
// without flock rely on O_EXCL creation.
type FileLock struct {
	path string
}

// LockFile creates path exclusively and writes the current pid into it.
func LockFile(path string) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	f.Close()
	return &FileLock{path: path}, nil
}

// Unlock removes the lock file.
func (l *FileLock) Unlock() error {
	if l == nil || l.path == "" {
		return nil
	}
	err := os.Remove(l.path)
	l.path = ""
	return err
}
