package editor

import (
	"github.com/kobzarvs/qcore/internal/text"
)

// moveTo moves the head to off. With extend the anchor stays put, otherwise
// the selection collapses.
func (e *Editor) moveTo(off int, extend bool) {
	if extend {
		e.SelectTo(off)
		return
	}
	e.SetCursor(off)
}

// MoveLeft steps one character left. Without extend a non-empty selection
// collapses to its start instead.
func (e *Editor) MoveLeft(extend bool) {
	sel := e.Selection()
	if !extend && !sel.IsEmpty() {
		e.SetCursor(sel.Start)
		return
	}
	e.moveTo(text.PrevCharIndex(e.buf.String(), e.head), extend)
}

// MoveRight is the mirror of MoveLeft.
func (e *Editor) MoveRight(extend bool) {
	sel := e.Selection()
	if !extend && !sel.IsEmpty() {
		e.SetCursor(sel.End)
		return
	}
	e.moveTo(text.NextCharIndex(e.buf.String(), e.head), extend)
}

func (e *Editor) MoveUp(extend bool) { e.moveVertical(-1, extend) }

func (e *Editor) MoveDown(extend bool) { e.moveVertical(1, extend) }

// moveVertical keeps the column of the first vertical step in preferredCol
// until something other than vertical movement happens.
func (e *Editor) moveVertical(delta int, extend bool) {
	lines := text.NewLines(e.buf.String())
	line, col, _ := lines.LineCol(e.head)
	pref := e.preferredCol
	if pref < 0 {
		pref = col
	}
	off := lines.Index(line+delta, pref)
	e.moveTo(off, extend)
	e.preferredCol = pref
}

func (e *Editor) WordLeft(extend bool) {
	e.moveTo(text.WordLeft(e.buf.String(), e.head), extend)
}

func (e *Editor) WordRight(extend bool) {
	e.moveTo(text.WordRight(e.buf.String(), e.head), extend)
}

func (e *Editor) LineStart(extend bool) {
	line, _ := e.Cursor()
	e.moveTo(text.LineBounds(e.buf.String(), line).Start, extend)
}

func (e *Editor) LineEnd(extend bool) {
	line, _ := e.Cursor()
	e.moveTo(text.LineBounds(e.buf.String(), line).End, extend)
}

func (e *Editor) FileStart(extend bool) { e.moveTo(0, extend) }

func (e *Editor) FileEnd(extend bool) { e.moveTo(e.buf.Len(), extend) }

// SelectAll selects the whole document with the head at the end.
func (e *Editor) SelectAll() {
	e.SetCursor(0)
	e.SelectTo(e.buf.Len())
}
