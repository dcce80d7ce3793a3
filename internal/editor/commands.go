package editor

import (
	"strings"

	"github.com/kobzarvs/qcore/internal/blocks"
	"github.com/kobzarvs/qcore/internal/history"
	"github.com/kobzarvs/qcore/internal/logger"
	"github.com/kobzarvs/qcore/internal/text"
)

const (
	ActionMoveLeft         = "move_left"
	ActionMoveRight        = "move_right"
	ActionMoveUp           = "move_up"
	ActionMoveDown         = "move_down"
	ActionSelectLeft       = "select_left"
	ActionSelectRight      = "select_right"
	ActionSelectUp         = "select_up"
	ActionSelectDown       = "select_down"
	ActionWordLeft         = "word_left"
	ActionWordRight        = "word_right"
	ActionSelectWordLeft   = "select_word_left"
	ActionSelectWordRight  = "select_word_right"
	ActionLineStart        = "line_start"
	ActionLineEnd          = "line_end"
	ActionSelectLineStart  = "select_line_start"
	ActionSelectLineEnd    = "select_line_end"
	ActionFileStart        = "file_start"
	ActionFileEnd          = "file_end"
	ActionSelectFileStart  = "select_file_start"
	ActionSelectFileEnd    = "select_file_end"
	ActionSelectAll        = "select_all"
	ActionBackspace        = "backspace"
	ActionDeleteChar       = "delete_char"
	ActionNewline          = "newline"
	ActionIndent           = "indent"
	ActionUndo             = "undo"
	ActionRedo             = "redo"
	ActionCopy             = "copy"
	ActionCut              = "cut"
	ActionPaste            = "paste"
	ActionComplete         = "complete"
	ActionCompletionCancel = "completion_cancel"
)

// Actions lists every action Exec understands.
func Actions() []string {
	return []string{
		ActionMoveLeft, ActionMoveRight, ActionMoveUp, ActionMoveDown,
		ActionSelectLeft, ActionSelectRight, ActionSelectUp, ActionSelectDown,
		ActionWordLeft, ActionWordRight, ActionSelectWordLeft, ActionSelectWordRight,
		ActionLineStart, ActionLineEnd, ActionSelectLineStart, ActionSelectLineEnd,
		ActionFileStart, ActionFileEnd, ActionSelectFileStart, ActionSelectFileEnd,
		ActionSelectAll, ActionBackspace, ActionDeleteChar, ActionNewline, ActionIndent,
		ActionUndo, ActionRedo, ActionCopy, ActionCut, ActionPaste,
		ActionComplete, ActionCompletionCancel,
	}
}

// Exec runs a named action and reports whether it was handled. While
// completion is active it takes move_up, move_down, newline and indent.
func (e *Editor) Exec(action string) bool {
	if e.comp.Active() {
		switch action {
		case ActionMoveUp:
			return e.comp.MoveUp()
		case ActionMoveDown:
			return e.comp.MoveDown()
		case ActionNewline, ActionIndent:
			return e.ConfirmCompletion()
		}
	}

	switch action {
	case ActionMoveLeft, ActionSelectLeft:
		e.MoveLeft(action == ActionSelectLeft)
	case ActionMoveRight, ActionSelectRight:
		e.MoveRight(action == ActionSelectRight)
	case ActionMoveUp, ActionSelectUp:
		e.MoveUp(action == ActionSelectUp)
	case ActionMoveDown, ActionSelectDown:
		e.MoveDown(action == ActionSelectDown)
	case ActionWordLeft, ActionSelectWordLeft:
		e.WordLeft(action == ActionSelectWordLeft)
	case ActionWordRight, ActionSelectWordRight:
		e.WordRight(action == ActionSelectWordRight)
	case ActionLineStart, ActionSelectLineStart:
		e.LineStart(action == ActionSelectLineStart)
	case ActionLineEnd, ActionSelectLineEnd:
		e.LineEnd(action == ActionSelectLineEnd)
	case ActionFileStart, ActionSelectFileStart:
		e.FileStart(action == ActionSelectFileStart)
	case ActionFileEnd, ActionSelectFileEnd:
		e.FileEnd(action == ActionSelectFileEnd)
	case ActionSelectAll:
		e.SelectAll()
	case ActionBackspace:
		e.Backspace()
	case ActionDeleteChar:
		e.DeleteForward()
	case ActionNewline:
		return e.Newline()
	case ActionIndent:
		e.Indent()
	case ActionUndo:
		return e.Undo()
	case ActionRedo:
		return e.Redo()
	case ActionCopy:
		return e.Copy()
	case ActionCut:
		return e.Cut()
	case ActionPaste:
		return e.Paste()
	case ActionComplete:
		e.evaluateCompletion()
		return e.comp.Active()
	case ActionCompletionCancel:
		if !e.comp.Active() {
			return false
		}
		e.comp.Deactivate()
	default:
		return false
	}
	return true
}

// Backspace deletes the selection, or the character before the cursor.
func (e *Editor) Backspace() {
	sel := e.Selection()
	if sel.IsEmpty() {
		sel.Start = text.PrevCharIndex(e.buf.String(), sel.End)
	}
	e.DeleteRange(sel)
}

// DeleteForward deletes the selection, or the character after the cursor.
func (e *Editor) DeleteForward() {
	sel := e.Selection()
	if sel.IsEmpty() {
		sel.End = text.NextCharIndex(e.buf.String(), sel.Start)
	}
	e.DeleteRange(sel)
}

// Newline breaks the line, carrying over its leading whitespace. Single-line
// editors do not handle it.
func (e *Editor) Newline() bool {
	if e.opts.SingleLine {
		return false
	}
	sel := e.Selection()
	content := e.buf.String()
	line, _, lineStart := text.LineColForIndex(content, sel.Start)
	bounds := text.LineBounds(content, line)
	indent := leadingWhitespace(content[lineStart:bounds.End])
	if lineStart+len(indent) > sel.Start {
		indent = indent[:sel.Start-lineStart]
	}
	e.InsertText("\n" + indent)
	return true
}

func leadingWhitespace(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	return line[:len(line)-len(trimmed)]
}

func (e *Editor) Indent() {
	e.InsertText("\t")
}

// ConfirmCompletion replaces the prefix with the selected item as a single
// undo step and hides completion.
func (e *Editor) ConfirmCompletion() bool {
	item, ok := e.comp.Selected()
	if !ok {
		return false
	}
	e.replace(e.comp.PrefixRange(), item.Label, true)
	e.comp.Deactivate()
	return true
}

// Undo reverts the newest transaction. It reports false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	// The history drops any open transaction, composition included.
	e.composing = false
	tx, ok := e.hist.Undo()
	if !ok {
		return false
	}
	e.replay(tx)
	return true
}

// Redo is the mirror of Undo.
func (e *Editor) Redo() bool {
	e.composing = false
	tx, ok := e.hist.Redo()
	if !ok {
		return false
	}
	e.replay(tx)
	return true
}

func (e *Editor) replay(tx history.Transaction) {
	for _, op := range tx {
		switch op.Kind {
		case history.OpInsert:
			e.replace(text.Range{Start: op.Range.Start, End: op.Range.Start}, op.Text, false)
		case history.OpDelete:
			e.replace(op.Range, "", false)
		}
	}
	e.comp.Deactivate()
}

// Copy writes the selection to the clipboard. An empty selection copies
// nothing.
func (e *Editor) Copy() bool {
	sel := e.Selection()
	if sel.IsEmpty() || e.clipboard == nil {
		return false
	}
	e.clipboard.Write(e.buf.Read(sel))
	return true
}

func (e *Editor) Cut() bool {
	if !e.Copy() {
		return false
	}
	e.DeleteRange(e.Selection())
	return true
}

func (e *Editor) Paste() bool {
	if e.clipboard == nil {
		return false
	}
	s, ok := e.clipboard.Read()
	if !ok || s == "" {
		return false
	}
	e.InsertText(s)
	return true
}

// SetGrammar configures block pairs and completion keywords from a grammar
// descriptor. The descriptor is parsed again only when it changes; a
// malformed one leaves no pairs and no keywords.
func (e *Editor) SetGrammar(descriptor string) {
	g, changed := e.grammars.Load(descriptor)
	if !changed {
		return
	}
	if err := e.grammars.Err(); err != nil {
		logger.Warn("editor: malformed grammar descriptor", "uri", e.uri, "error", err)
	}
	e.scanner.SetPairs(g.Blocks)
	e.comp.SetKeywords(g.Keywords)
	e.blocksValid = false
}

// GrammarName returns the name declared by the current grammar.
func (e *Editor) GrammarName() string { return e.grammars.Grammar().Name }

// Blocks returns the block scan of the current content, rescanning only
// after a content or grammar change.
func (e *Editor) Blocks() blocks.Result {
	if !e.blocksValid || e.blocksVersion != e.version {
		e.scanner.Rescan(e.buf.String())
		e.blocksVersion = e.version
		e.blocksValid = true
	}
	return e.scanner.Result()
}
