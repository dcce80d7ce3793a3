package editor

import (
	"sort"

	"github.com/kobzarvs/qcore/internal/completion"
	"github.com/kobzarvs/qcore/internal/logger"
	"github.com/kobzarvs/qcore/internal/text"
)

// Span styles the byte range [Start, End).
type Span struct {
	Start int
	End   int
	Style string
}

// HighlightPayload is tokenizer output for one document snapshot.
type HighlightPayload struct {
	URI     string
	Version int
	Length  int
	Spans   []Span
}

// CompletionPayload is completion-service output for a cursor position.
// Column is in UTF-16 code units, as reported by Position.
type CompletionPayload struct {
	URI     string
	Version int
	Line    int
	Column  int
	Items   []completion.Item
}

// Position returns the cursor line and its UTF-16 column, the coordinates
// completion services use.
func (e *Editor) Position() (line, col int) {
	content := e.buf.String()
	line, _, lineStart := text.LineColForIndex(content, e.head)
	return line, text.UTF16Len(content[lineStart:e.head])
}

func (e *Editor) current(uri string, version int) bool {
	return uri == e.uri && version == e.version
}

// ApplyHighlights installs spans computed for the current content. A payload
// for another document, version or length is dropped and false returned.
func (e *Editor) ApplyHighlights(p HighlightPayload) bool {
	if !e.current(p.URI, p.Version) || p.Length != e.buf.Len() {
		logger.Debug("editor: stale highlights dropped",
			"uri", p.URI, "version", p.Version, "current", e.version)
		return false
	}
	spans := make([]Span, 0, len(p.Spans))
	for _, sp := range p.Spans {
		r := e.buf.SnapRange(text.Range{Start: sp.Start, End: sp.End})
		if r.IsEmpty() {
			continue
		}
		spans = append(spans, Span{Start: r.Start, End: r.End, Style: sp.Style})
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	e.spans = spans
	return true
}

// Spans returns the installed highlight spans, ordered by start.
func (e *Editor) Spans() []Span { return e.spans }

// SpansIn returns the spans overlapping r.
func (e *Editor) SpansIn(r text.Range) []Span {
	var out []Span
	for _, sp := range e.spans {
		if sp.Start >= r.End {
			break
		}
		if sp.End > r.Start {
			out = append(out, sp)
		}
	}
	return out
}

// ApplyCompletions registers service candidates and re-filters. A payload
// for another document, version or cursor position is dropped.
func (e *Editor) ApplyCompletions(p CompletionPayload) bool {
	line, col := e.Position()
	if !e.current(p.URI, p.Version) || p.Line != line || p.Column != col {
		logger.Debug("editor: stale completions dropped",
			"uri", p.URI, "version", p.Version, "current", e.version)
		return false
	}
	e.comp.RegisterSymbols(p.Items)
	e.evaluateCompletion()
	return true
}
