package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicReplacesContentAndKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.mpr")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(path, []byte("new")); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600 preserved, got %o", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBackupWritesGivenContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.mpr")
	if err := os.WriteFile(path, []byte("pristine"), 0o600); err != nil {
		t.Fatal(err)
	}

	backup, rotated, err := Backup(path, []byte("pristine"))
	if err != nil {
		t.Fatal(err)
	}
	if backup != path+".bak" || rotated != "" {
		t.Fatalf("unexpected backup result %q rotated=%q", backup, rotated)
	}
	if got := readString(t, backup); got != "pristine" {
		t.Fatalf("backup content %q", got)
	}
	info, err := os.Stat(backup)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected backup mode 0600, got %o", info.Mode().Perm())
	}
}

func TestBackupRotatesStaleBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.mpr")
	if err := os.WriteFile(path+".bak", []byte("first export"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("second export"), 0o644); err != nil {
		t.Fatal(err)
	}

	backup, rotated, err := Backup(path, []byte("second export"))
	if err != nil {
		t.Fatal(err)
	}
	if rotated != PristinePath(path) {
		t.Fatalf("rotated = %q, want %q", rotated, PristinePath(path))
	}
	if got := readString(t, backup); got != "second export" {
		t.Fatalf("backup holds %q, want the content being replaced", got)
	}
	if got := readString(t, rotated); got != "first export" {
		t.Fatalf("pristine copy holds %q", got)
	}

	if _, rotated, err := Backup(path, []byte("third export")); err != nil || rotated != "" {
		t.Fatalf("second rotation: rotated=%q err=%v", rotated, err)
	}
	if got := readString(t, BackupPath(path)); got != "third export" {
		t.Fatalf("backup holds %q", got)
	}
	if got := readString(t, PristinePath(path)); got != "first export" {
		t.Fatalf("pristine copy overwritten: %q", got)
	}
}

func TestBackupSameContentDoesNotRotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.mpr")
	if err := os.WriteFile(path+".bak", []byte("same"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, rotated, err := Backup(path, []byte("same")); err != nil || rotated != "" {
		t.Fatalf("rotated=%q err=%v", rotated, err)
	}
	if _, err := os.Stat(PristinePath(path)); !os.IsNotExist(err) {
		t.Fatalf("unexpected pristine copy: %v", err)
	}
}

func TestRestoreCopiesBackupBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "side.mpr")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Backup(path, []byte("original")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Restore(path); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Fatalf("restore mismatch: %q", got)
	}
	if _, err := os.Stat(BackupPath(path)); err != nil {
		t.Fatalf("expected backup kept: %v", err)
	}
}

func TestRestoreWithoutBackupFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.mpr")
	if err := Restore(path); err == nil {
		t.Fatal("expected error without backup")
	}
}

func TestTryLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project", ".kerf.lock")
	first, err := TryLock(path)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := TryLock(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected lock file to stay after unlock: %v", err)
	}
	second, err := TryLock(path)
	if err != nil {
		t.Fatalf("relock after unlock: %v", err)
	}
	_ = second.Unlock()
}
