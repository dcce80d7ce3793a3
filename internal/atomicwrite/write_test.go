package atomicwrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileCreatesAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "a.txt")
	if err := File(path, []byte("one"), 0o600); err != nil {
		t.Fatalf("File error: %v", err)
	}
	if err := File(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("File error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "two" {
		t.Fatalf("contents = %q, %v; want %q", data, err, "two")
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm = %v, want 0600 kept from first write", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("directory has %d entries, want only the target", len(entries))
	}
}

func TestFileErrorNamesTarget(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	err := File(filepath.Join(blocker, "child.txt"), []byte("x"), 0o644)
	if err == nil {
		t.Fatalf("File under a regular file succeeded")
	}
	if !strings.Contains(err.Error(), "atomic write to") {
		t.Fatalf("error = %q, want target context", err)
	}
}
