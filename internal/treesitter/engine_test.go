package treesitter

import (
	"strings"
	"testing"
	"time"

	"github.com/kobzarvs/qcore/internal/editor"
)

func startEngine(t *testing.T) *Engine {
	t.Helper()
	e := New()
	if err := e.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	t.Cleanup(func() { _ = e.Stop() })
	return e
}

func spanAt(spans []editor.Span, start, end int) (editor.Span, bool) {
	for _, sp := range spans {
		if sp.Start == start && sp.End == end {
			return sp, true
		}
	}
	return editor.Span{}, false
}

func TestEngineSupports(t *testing.T) {
	e := startEngine(t)
	for _, lang := range []string{"go", "bash"} {
		if !e.Supports(lang) {
			t.Errorf("Supports(%q) = false", lang)
		}
	}
	if e.Supports("markdown") {
		t.Errorf("Supports(markdown) = true")
	}
}

func TestEngineParseResult(t *testing.T) {
	e := startEngine(t)
	src := "package main\n\n// hi\nvar s = \"x\"\n"
	e.Parse(Request{URI: "file:///main.go", Language: "go", Version: 3, Text: src})

	var p editor.HighlightPayload
	select {
	case p = <-e.Results():
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for highlights")
	}
	if p.URI != "file:///main.go" || p.Version != 3 || p.Length != len(src) {
		t.Fatalf("payload = %s v%d len %d", p.URI, p.Version, p.Length)
	}
	checks := []struct {
		text  string
		style string
	}{
		{"package", "keyword"},
		{"// hi", "comment"},
		{"\"x\"", "string"},
		{"var", "keyword"},
	}
	for _, c := range checks {
		start := strings.Index(src, c.text)
		sp, ok := spanAt(p.Spans, start, start+len(c.text))
		if !ok || sp.Style != c.style {
			t.Errorf("span for %q = %+v (found %v), want style %q", c.text, sp, ok, c.style)
		}
	}
	for i := 1; i < len(p.Spans); i++ {
		if p.Spans[i].Start < p.Spans[i-1].Start {
			t.Fatalf("spans not ordered at %d: %+v", i, p.Spans)
		}
	}
}

func TestEngineUnknownLanguage(t *testing.T) {
	e := startEngine(t)
	e.Parse(Request{URI: "file:///README.md", Language: "markdown", Text: "hello"})
	select {
	case p := <-e.Results():
		t.Fatalf("unexpected payload: %#v", p)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestEngineIncrementalEdit(t *testing.T) {
	e := startEngine(t)
	ed := editor.New(editor.Options{Language: "go"})
	ed.Load("package main\n")
	ed.ConsumeEdits()
	if _, ok := e.Highlight(Request{URI: ed.URI(), Language: "go", Version: ed.Version(), Text: ed.Content()}); !ok {
		t.Fatalf("initial parse failed")
	}

	ed.FileEnd(false)
	ed.InsertText("// tail")
	edits, ok := ed.ConsumeEdits()
	if !ok || len(edits) != 1 {
		t.Fatalf("ConsumeEdits = %v, %v", edits, ok)
	}
	p, ok := e.Highlight(Request{URI: ed.URI(), Language: "go", Version: ed.Version(), Text: ed.Content(), Edits: edits})
	if !ok {
		t.Fatalf("incremental parse failed")
	}
	start := strings.Index(ed.Content(), "//")
	if sp, ok := spanAt(p.Spans, start, ed.Len()); !ok || sp.Style != "comment" {
		t.Fatalf("comment span = %+v (found %v)", sp, ok)
	}
	if !ed.ApplyHighlights(p) {
		t.Fatalf("editor rejected payload for its own version")
	}
}

func TestEngineStaleRequestReparses(t *testing.T) {
	e := startEngine(t)
	uri := "file:///a.go"
	if _, ok := e.Highlight(Request{URI: uri, Language: "go", Version: 1, Text: "package a\n"}); !ok {
		t.Fatalf("initial parse failed")
	}
	e.mu.Lock()
	e.stale[uri] = true
	e.mu.Unlock()

	// Edits that do not lead to Text are ignored once the tree is stale.
	bogus := []editor.Edit{{StartByte: 0, OldEndByte: 0, NewEndByte: 40}}
	p, ok := e.Highlight(Request{URI: uri, Language: "go", Version: 2, Text: "package b\n", Edits: bogus})
	if !ok {
		t.Fatalf("reparse failed")
	}
	if sp, ok := spanAt(p.Spans, 0, len("package")); !ok || sp.Style != "keyword" {
		t.Fatalf("keyword span = %+v (found %v)", sp, ok)
	}
}

func TestEditInput(t *testing.T) {
	in := editInput(editor.Edit{
		StartByte:   4,
		OldEndByte:  6,
		NewEndByte:  9,
		StartPoint:  editor.Point{Row: 1, Column: 2},
		OldEndPoint: editor.Point{Row: 1, Column: 4},
		NewEndPoint: editor.Point{Row: 2, Column: 1},
	})
	if in.StartIndex != 4 || in.OldEndIndex != 6 || in.NewEndIndex != 9 {
		t.Fatalf("indexes = %d %d %d", in.StartIndex, in.OldEndIndex, in.NewEndIndex)
	}
	if in.NewEndPoint.Row != 2 || in.NewEndPoint.Column != 1 || in.StartPoint.Column != 2 {
		t.Fatalf("points = %+v", in)
	}
}
