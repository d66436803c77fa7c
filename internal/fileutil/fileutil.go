// Package fileutil holds the backup, lock and atomic write helpers every
// kerf mutation goes through.
package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to a file name to form its backup sibling.
const BackupSuffix = ".bak"

// PristineSuffix names the oldest kept backup.
const PristineSuffix = ".bak.1"

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place. The file mode of an existing target is preserved.
func WriteFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// BackupPath returns the backup sibling for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// PristinePath returns the sibling holding the oldest kept backup.
func PristinePath(path string) string {
	return path + PristineSuffix
}

// Backup writes data, the content about to be replaced, to the .bak sibling
// of path. A differing older backup is moved to .bak.1 first unless one is
// already there, so the first pristine copy survives repeated runs. rotated
// is the .bak.1 path when this call moved a backup into it.
func Backup(path string, data []byte) (backup, rotated string, err error) {
	backup = BackupPath(path)
	existing, err := os.ReadFile(backup)
	switch {
	case err == nil && bytes.Equal(existing, data):
		return backup, "", nil
	case err == nil:
		pristine := PristinePath(path)
		if _, statErr := os.Stat(pristine); errors.Is(statErr, fs.ErrNotExist) {
			if err := os.Rename(backup, pristine); err != nil {
				return "", "", fmt.Errorf("rotate backup: %w", err)
			}
			rotated = pristine
		} else if statErr != nil {
			return "", "", fmt.Errorf("stat backup: %w", statErr)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", "", fmt.Errorf("read backup: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := WriteFileAtomic(backup, data); err != nil {
		return "", rotated, fmt.Errorf("write backup: %w", err)
	}
	if err := os.Chmod(backup, mode); err != nil {
		return "", rotated, fmt.Errorf("chmod backup: %w", err)
	}
	return backup, rotated, nil
}

// Restore replaces path with the content of its .bak sibling. The backup is
// kept.
func Restore(path string) error {
	data, err := os.ReadFile(BackupPath(path))
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	return WriteFileAtomic(path, data)
}
