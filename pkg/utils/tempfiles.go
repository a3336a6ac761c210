package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CreateTempFile creates a temp file in dir with a unique name built from
// prefix and ext. Returns the full path and the open file handle.
func CreateTempFile(dir, prefix, ext string) (string, *os.File, error) {
	name := fmt.Sprintf("%s_%s%s", prefix, GenerateUUID(), ext)
	fullPath := filepath.Join(dir, name)
	f, err := os.OpenFile(fullPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", nil, err
	}
	return fullPath, f, nil
}

// WriteFileAtomic writes the output of write to path through a temp file in
// the same directory, fsyncs it and renames it into place. On any failure the
// previous file at path is left untouched.
func WriteFileAtomic(path string, perm os.FileMode, write func(f *os.File) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath, f, err := CreateTempFile(dir, "."+filepath.Base(path), ".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = write(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err = f.Chmod(perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}
	return nil
}

// RemoveAllTempFiles removes all temp files in dir matching prefix and ext,
// such as leftovers of an interrupted WriteFileAtomic. Returns a combined
// error if any file could not be deleted.
func RemoveAllTempFiles(dir, prefix, ext string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	pattern := filepath.Join(dir, fmt.Sprintf("%s_*%s", prefix, ext))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob temp files: %w", err)
	}

	var errs []error
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", file, err))
		}
	}
	return errors.Join(errs...)
}
