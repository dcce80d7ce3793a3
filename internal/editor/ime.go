package editor

import (
	"github.com/kobzarvs/qcore/internal/text"
)

// The methods in this file form the input-method surface. Every offset
// crossing it is in UTF-16 code units.

// NoRange asks ReplaceTextInRange and ReplaceAndMarkTextInRange to target
// the marked range, or the selection when nothing is marked.
var NoRange = text.UTF16Range{Start: -1, End: -1}

func (e *Editor) toBytes(r text.UTF16Range) text.Range {
	return text.UTF16RangeToBytes(e.buf.String(), r).Normalize()
}

func (e *Editor) toUTF16(r text.Range) text.UTF16Range {
	return text.ByteRangeToUTF16(e.buf.String(), r)
}

func (e *Editor) target(r text.UTF16Range) text.Range {
	if r.Start >= 0 && r.End >= 0 {
		return e.toBytes(r)
	}
	if e.hasMarked {
		return e.marked
	}
	return e.Selection()
}

// TextForRange returns the text in r.
func (e *Editor) TextForRange(r text.UTF16Range) string {
	return e.buf.Read(e.toBytes(r))
}

// ReplaceTextInRange commits s over r and ends any composition. A commit
// joins the composition's undo step.
func (e *Editor) ReplaceTextInRange(r text.UTF16Range, s string) {
	target := e.target(r)
	e.replace(target, s, true)
	e.clearMarked()
}

// ReplaceAndMarkTextInRange puts composition text s over r. It becomes the
// marked range, and sel, relative to s, becomes the selection. An empty s
// ends the composition. All updates of one composition and its commit undo
// as a single step.
func (e *Editor) ReplaceAndMarkTextInRange(r text.UTF16Range, s string, sel text.UTF16Range) {
	target := e.target(r)
	if e.normalizeInput(s) == "" {
		e.replace(target, "", true)
		e.clearMarked()
		e.evaluateCompletion()
		return
	}
	e.beginComposition()
	e.marking = true
	inserted := e.replace(target, s, true)
	e.marking = false
	s = e.buf.Read(inserted)
	local := text.UTF16RangeToBytes(s, sel).Normalize()
	e.marked = inserted
	e.hasMarked = true
	e.setSelection(inserted.Start+local.Start, inserted.Start+local.End)
	e.comp.Deactivate()
}

// SelectedTextRange returns the selection.
func (e *Editor) SelectedTextRange() text.UTF16Range {
	return e.toUTF16(e.Selection())
}

// MarkedTextRange returns the marked range.
func (e *Editor) MarkedTextRange() (text.UTF16Range, bool) {
	if !e.hasMarked {
		return text.UTF16Range{}, false
	}
	return e.toUTF16(e.marked), true
}

// UnmarkText accepts the composition as typed.
func (e *Editor) UnmarkText() {
	if !e.hasMarked {
		return
	}
	e.clearMarked()
	e.evaluateCompletion()
}

// BoundsForRange returns the screen rectangle covering the start of r, up to
// its end when r stays on one line.
func (e *Editor) BoundsForRange(r text.UTF16Range) (Rect, bool) {
	if e.layout == nil {
		return Rect{}, false
	}
	br := e.toBytes(r)
	lines := text.NewLines(e.buf.String())
	line, col, _ := lines.LineCol(br.Start)
	rect, ok := e.layout.CellRect(line, col)
	if !ok {
		return Rect{}, false
	}
	endLine, endCol, _ := lines.LineCol(br.End)
	if endLine == line && endCol > col {
		if end, ok := e.layout.CellRect(line, endCol); ok && end.X > rect.X {
			rect.W = end.X - rect.X
		}
	}
	return rect, true
}

// CharacterIndexForPoint returns the UTF-16 offset under a screen point.
func (e *Editor) CharacterIndexForPoint(x, y int) (int, bool) {
	if e.layout == nil {
		return 0, false
	}
	line, col := e.layout.HitTest(x, y)
	content := e.buf.String()
	return text.ByteToUTF16(content, text.IndexForLineCol(content, line, col)), true
}
