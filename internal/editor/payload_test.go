package editor

import (
	"testing"

	"github.com/kobzarvs/qcore/internal/completion"
	"github.com/kobzarvs/qcore/internal/text"
)

func TestApplyHighlightsDropsStalePayloads(t *testing.T) {
	e := newTestEditor("func main() {}", 0)
	payload := HighlightPayload{
		URI:     e.URI(),
		Version: e.Version(),
		Length:  e.Len(),
		Spans: []Span{
			{Start: 5, End: 9, Style: "function"},
			{Start: 0, End: 4, Style: "keyword"},
			{Start: 3, End: 3, Style: "empty"},
		},
	}
	if !e.ApplyHighlights(payload) {
		t.Fatalf("current payload dropped")
	}
	spans := e.Spans()
	if len(spans) != 2 || spans[0].Style != "keyword" || spans[1].Style != "function" {
		t.Fatalf("spans = %+v", spans)
	}
	if got := e.SpansIn(text.Range{Start: 4, End: 6}); len(got) != 1 || got[0].Style != "function" {
		t.Fatalf("SpansIn = %+v", got)
	}

	e.InsertText("x")
	if e.ApplyHighlights(payload) {
		t.Fatalf("payload for an old version applied")
	}
	payload.Version = e.Version()
	if e.ApplyHighlights(payload) {
		t.Fatalf("payload for an old length applied")
	}
	payload.Length = e.Len()
	payload.URI = "untitled:999.go"
	if e.ApplyHighlights(payload) {
		t.Fatalf("payload for another document applied")
	}
	if len(e.Spans()) != 2 {
		t.Fatalf("dropped payload replaced spans")
	}
}

func TestApplyCompletions(t *testing.T) {
	e := New(Options{})
	e.InsertText("x := pri")
	line, col := e.Position()
	if line != 0 || col != 8 {
		t.Fatalf("Position = %d,%d, want 0,8", line, col)
	}
	payload := CompletionPayload{
		URI:     e.URI(),
		Version: e.Version(),
		Line:    line,
		Column:  col,
		Items:   []completion.Item{{Label: "println", Kind: completion.KindFunction}},
	}
	if !e.ApplyCompletions(payload) {
		t.Fatalf("current completions dropped")
	}
	st := e.Completion()
	if !st.Active || st.Items[0].Label != "println" {
		t.Fatalf("completion = %+v", st)
	}

	e.SetCursor(0)
	if e.ApplyCompletions(payload) {
		t.Fatalf("completions for another cursor position applied")
	}
	e.SetCursor(e.Len())
	e.InsertText("n")
	if e.ApplyCompletions(payload) {
		t.Fatalf("completions for an old version applied")
	}
}

func TestPositionCountsUTF16(t *testing.T) {
	e := newTestEditor("a\n\U0001F600x", 6)
	if line, col := e.Position(); line != 1 || col != 2 {
		t.Fatalf("Position = %d,%d, want 1,2", line, col)
	}
	if line, col := e.Cursor(); line != 1 || col != 1 {
		t.Fatalf("Cursor = %d,%d, want 1,1", line, col)
	}
}
