package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPathUsesStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	got, err := Path()
	if err != nil {
		t.Fatalf("Path error: %v", err)
	}
	if got != "/tmp/state/qcore/session.json" {
		t.Fatalf("Path = %q, want %q", got, "/tmp/state/qcore/session.json")
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qcore", "session.json")
	m := Open(path, 0)
	m.SetFileState("file:///a.go", FileState{Anchor: 3, Head: 7, ScrollY: 2, Grammar: "go"})
	m.PushHistory(":goto 3")
	m.PushHistory(":goto 3")
	m.PushHistory(":w")
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	m2 := Open(path, 0)
	st, ok := m2.FileState("file:///a.go")
	if !ok || st.Anchor != 3 || st.Head != 7 || st.ScrollY != 2 || st.Grammar != "go" {
		t.Fatalf("FileState = %+v, %v", st, ok)
	}
	if m2.ActiveFile() != "file:///a.go" {
		t.Fatalf("ActiveFile = %q", m2.ActiveFile())
	}
	if h := m2.History(); len(h) != 2 || h[0] != ":goto 3" || h[1] != ":w" {
		t.Fatalf("History = %v", h)
	}
}

func TestSaveSkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	m := Open(path, 0)
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("clean Save wrote %s", path)
	}
}

func TestCorruptSessionIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := Open(path, 0)
	if _, ok := m.FileState("file:///a"); ok {
		t.Fatalf("corrupt session produced state")
	}
	m.SetFileState("file:///a", FileState{Head: 1})
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	m := Open(path, 0)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < MaxFiles+5; i++ {
		m.SetFileState(fmt.Sprintf("file:///%d", i), FileState{Seen: base.Add(time.Duration(i) * time.Minute)})
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, ok := m.FileState("file:///0"); ok {
		t.Fatalf("oldest entry survived pruning")
	}
	if _, ok := m.FileState(fmt.Sprintf("file:///%d", MaxFiles+4)); !ok {
		t.Fatalf("newest entry pruned")
	}
}
