//go:build unix

package utils

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLockFile_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipman.lock")

	l, err := LockFile(path)
	if err != nil {
		t.Fatalf("LockFile: %v", err)
	}
	if _, err := LockFile(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("second lock: expected ErrLocked, got %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatal(err)
	}

	again, err := LockFile(path)
	if err != nil {
		t.Fatalf("relock after unlock: %v", err)
	}
	again.Unlock()
}
