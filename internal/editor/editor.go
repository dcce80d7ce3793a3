// Package editor is the shared text editing core behind every text input in
// qcore. An Editor owns a buffer, the selection over it, the IME marked
// range, undo history, local completion and the block depth scanner, and
// keeps them consistent across every mutation.
package editor

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/kobzarvs/qcore/internal/blocks"
	"github.com/kobzarvs/qcore/internal/completion"
	"github.com/kobzarvs/qcore/internal/grammar"
	"github.com/kobzarvs/qcore/internal/history"
	"github.com/kobzarvs/qcore/internal/logger"
	"github.com/kobzarvs/qcore/internal/text"
)

// Options configure a new Editor.
type Options struct {
	// SingleLine replaces inserted line breaks with spaces. Used by the
	// command prompt.
	SingleLine bool
	// UndoLimit caps the undo stack; <= 0 uses history.DefaultLimit.
	UndoLimit int
	// MaxCompletionItems caps the completion list; <= 0 means no cap.
	MaxCompletionItems int
	// Language names the document language for untitled URIs.
	Language string
}

// Clipboard is the system clipboard as seen by the editor.
type Clipboard interface {
	Read() (string, bool)
	Write(text string)
}

// Rect is a cell rectangle in screen coordinates.
type Rect struct {
	X, Y, W, H int
}

// Layout is the rendering collaborator's geometry. Lines and columns are in
// line/column addressing terms: column is a character count.
type Layout interface {
	CellRect(line, col int) (Rect, bool)
	HitTest(x, y int) (line, col int)
}

// Point is a row and a byte column, as consumed by incremental parsers.
type Point struct {
	Row    int
	Column int
}

// Edit describes one buffer splice in the coordinates of the content it was
// applied to.
type Edit struct {
	StartByte   int
	OldEndByte  int
	NewEndByte  int
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

var untitledSeq atomic.Int64

type Editor struct {
	buf *text.Buffer

	anchor int
	head   int

	marked    text.Range
	hasMarked bool
	// composing is set while a history transaction collects the edits of
	// one composition; marking keeps it open across a replace.
	composing bool
	marking   bool

	preferredCol int

	hist *history.History
	comp *completion.Engine

	grammars      grammar.Cache
	scanner       blocks.Scanner
	blocksVersion int
	blocksValid   bool

	version    int
	changeTick uint64
	edits      []Edit
	editsReset bool

	uri      string
	path     string
	language string
	opts     Options

	clipboard Clipboard
	layout    Layout

	spans []Span
}

func New(opts Options) *Editor {
	e := &Editor{
		buf:          text.NewBuffer(""),
		preferredCol: -1,
		hist:         history.New(opts.UndoLimit),
		comp:         completion.NewEngine(nil, opts.MaxCompletionItems),
		language:     opts.Language,
		opts:         opts,
	}
	e.uri = untitledURI(untitledSeq.Add(1), opts.Language)
	return e
}

func untitledURI(n int64, language string) string {
	if language == "" {
		language = "txt"
	}
	return fmt.Sprintf("untitled:%d.%s", n, language)
}

// FileURI returns the file:// URI for path.
func FileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// Load replaces the whole document, as on file open. History is cleared and
// the cursor moves to the start.
func (e *Editor) Load(content string) {
	e.buf.Set(content)
	e.anchor, e.head = 0, 0
	e.hasMarked = false
	e.marked = text.Range{}
	e.composing = false
	e.preferredCol = -1
	e.hist.Clear()
	e.comp.Deactivate()
	e.spans = nil
	e.edits = nil
	e.editsReset = true
	e.bump()
}

// SetPath binds the editor to a file, which also sets its URI.
func (e *Editor) SetPath(path string) {
	e.path = path
	if path == "" {
		e.uri = untitledURI(untitledSeq.Add(1), e.language)
		return
	}
	e.uri = FileURI(path)
}

func (e *Editor) Path() string { return e.path }

func (e *Editor) URI() string { return e.uri }

func (e *Editor) Language() string { return e.language }

// SetLanguage changes the language; untitled documents get a fresh URI.
func (e *Editor) SetLanguage(name string) {
	e.language = name
	if e.path == "" {
		e.uri = untitledURI(untitledSeq.Add(1), name)
	}
}

func (e *Editor) SetClipboard(c Clipboard) { e.clipboard = c }

func (e *Editor) SetLayout(l Layout) { e.layout = l }

func (e *Editor) Options() Options { return e.opts }

// Content returns the full text.
func (e *Editor) Content() string { return e.buf.String() }

// Len returns the content length in bytes.
func (e *Editor) Len() int { return e.buf.Len() }

// Version increases on every content change.
func (e *Editor) Version() int { return e.version }

// ChangeTick increases on every content change and never resets.
func (e *Editor) ChangeTick() uint64 { return e.changeTick }

// Selection returns the selected byte range, Start <= End.
func (e *Editor) Selection() text.Range {
	return text.Range{Start: e.anchor, End: e.head}.Normalize()
}

func (e *Editor) Anchor() int { return e.anchor }

func (e *Editor) Head() int { return e.head }

// MarkedRange returns the byte range under IME composition.
func (e *Editor) MarkedRange() (text.Range, bool) {
	return e.marked, e.hasMarked
}

// PreferredColumn returns the cached vertical movement column, or -1.
func (e *Editor) PreferredColumn() int { return e.preferredCol }

// SelectedText returns the text of the selection.
func (e *Editor) SelectedText() string { return e.buf.Read(e.Selection()) }

// Cursor returns the line and column of the head.
func (e *Editor) Cursor() (line, col int) {
	line, col, _ = text.LineColForIndex(e.buf.String(), e.head)
	return line, col
}

// CanUndo and CanRedo report whether the history stacks are non-empty.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// Completion returns the completion state.
func (e *Editor) Completion() completion.State { return e.comp.State() }

// CompletionPrefix returns the byte range a confirmed item replaces.
func (e *Editor) CompletionPrefix() text.Range { return e.comp.PrefixRange() }

// SetCursor collapses the selection at off.
func (e *Editor) SetCursor(off int) {
	off = e.buf.Snap(off)
	e.setSelection(off, off)
	e.preferredCol = -1
	e.clearMarked()
	e.comp.Deactivate()
}

// SelectTo extends the selection from the anchor to off.
func (e *Editor) SelectTo(off int) {
	off = e.buf.Snap(off)
	e.setSelection(e.anchor, off)
	e.preferredCol = -1
	e.clearMarked()
	e.comp.Deactivate()
}

// SetSelection sets anchor and head directly, as when restoring a session.
func (e *Editor) SetSelection(anchor, head int) {
	e.setSelection(e.buf.Snap(anchor), e.buf.Snap(head))
	e.preferredCol = -1
	e.clearMarked()
	e.comp.Deactivate()
}

// GotoLineCol moves the cursor to a clamped line and column.
func (e *Editor) GotoLineCol(line, col int) {
	e.SetCursor(text.IndexForLineCol(e.buf.String(), line, col))
}

// InsertText replaces the selection with s and leaves the cursor after it.
func (e *Editor) InsertText(s string) {
	e.replace(e.Selection(), s, true)
}

// DeleteRange removes r and collapses the cursor at its start.
func (e *Editor) DeleteRange(r text.Range) {
	e.replace(r, "", true)
}

func (e *Editor) setSelection(anchor, head int) {
	e.anchor = anchor
	e.head = head
}

// clearMarked drops the marked range. Outside a marking replace it also
// ends the composition, closing its history transaction.
func (e *Editor) clearMarked() {
	e.hasMarked = false
	e.marked = text.Range{}
	if e.composing && !e.marking {
		e.composing = false
		e.hist.End()
	}
}

// beginComposition opens the history transaction of a composition.
func (e *Editor) beginComposition() {
	if !e.composing {
		e.composing = true
		e.hist.Begin()
	}
}

func (e *Editor) normalizeInput(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	if e.opts.SingleLine {
		s = strings.ReplaceAll(s, "\r\n", " ")
		s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
	}
	return s
}

// replace is the single mutation path. It splices the buffer, collapses the
// selection after the inserted text, records history, re-evaluates
// completion and bumps the version, in that order.
func (e *Editor) replace(r text.Range, s string, record bool) text.Range {
	r = e.buf.SnapRange(r)
	s = e.normalizeInput(s)
	if r.IsEmpty() && s == "" {
		return r
	}
	old := e.buf.String()

	removed, err := e.buf.Delete(r)
	if err != nil {
		logger.Error("editor: delete failed", "range", r, "error", err)
		return r
	}
	if err := e.buf.Insert(r.Start, s); err != nil {
		logger.Error("editor: insert failed", "offset", r.Start, "error", err)
		_ = e.buf.Insert(r.Start, removed)
		return r
	}
	inserted := text.Range{Start: r.Start, End: r.Start + len(s)}

	e.setSelection(inserted.End, inserted.End)
	e.preferredCol = -1

	if record {
		e.hist.Begin()
		if removed != "" {
			e.hist.Push(history.Op{Kind: history.OpDelete, Range: r, Text: removed})
		}
		if s != "" {
			e.hist.Push(history.Op{Kind: history.OpInsert, Range: inserted, Text: s})
		}
		e.hist.End()
	}
	e.clearMarked()

	e.evaluateCompletion()
	e.recordEdit(old, r, inserted)
	e.bump()
	return inserted
}

func (e *Editor) evaluateCompletion() {
	if e.head != e.anchor || e.hasMarked {
		e.comp.Deactivate()
		return
	}
	e.comp.Update(e.buf.String(), e.head)
}

func (e *Editor) recordEdit(old string, removed, inserted text.Range) {
	edit := Edit{
		StartByte:   removed.Start,
		OldEndByte:  removed.End,
		NewEndByte:  inserted.End,
		StartPoint:  pointAt(old, removed.Start),
		OldEndPoint: pointAt(old, removed.End),
		NewEndPoint: pointAt(e.buf.String(), inserted.End),
	}
	e.edits = append(e.edits, edit)
}

func pointAt(s string, off int) Point {
	line, _, lineStart := text.LineColForIndex(s, off)
	return Point{Row: line, Column: off - lineStart}
}

func (e *Editor) bump() {
	e.version++
	e.changeTick++
	e.blocksValid = false
}

// ConsumeEdits returns the edits applied since the last call. It reports
// false when the document was replaced wholesale and needs a full reparse.
func (e *Editor) ConsumeEdits() ([]Edit, bool) {
	edits, ok := e.edits, !e.editsReset
	e.edits = nil
	e.editsReset = false
	if !ok {
		return nil, false
	}
	return edits, true
}
