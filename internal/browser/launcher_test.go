package browser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResetProfileMissingDirIsNoop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")
	if err := ResetProfile(dir); err != nil {
		t.Fatalf("ResetProfile(missing) error = %v; want nil", err)
	}
}

func TestResetProfileRemovesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")
	if err := os.MkdirAll(filepath.Join(dir, "Default"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Default", "Cookies"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := ResetProfile(dir); err != nil {
		t.Fatalf("ResetProfile() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("profile dir still present after reset")
	}
}

func TestResetProfileEmptyDirRejected(t *testing.T) {
	if err := ResetProfile(""); err == nil {
		t.Fatal("ResetProfile(\"\") = nil; want error")
	}
}
