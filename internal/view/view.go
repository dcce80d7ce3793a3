package view

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qcore/internal/blocks"
	"github.com/kobzarvs/qcore/internal/config"
	"github.com/kobzarvs/qcore/internal/editor"
)

// View-level actions a keymap may bind in addition to the editor's.
const (
	ActionPageUp   = "page_up"
	ActionPageDown = "page_down"
)

var editorActions = func() map[string]bool {
	m := map[string]bool{}
	for _, a := range editor.Actions() {
		m[a] = true
	}
	return m
}()

// View renders an editor.Editor into a screen area and translates tcell
// events into editor operations.
type View struct {
	ed     *editor.Editor
	geo    Geometry
	styles Styles
	opts   config.EditorOptions
	keymap map[string]string
	area   editor.Rect

	measured bool
	tick     uint64
	// Cursor state the scroll position last followed.
	lastHead int
	lastTick uint64

	dragging bool
}

func New(ed *editor.Editor, cfg config.Config) *View {
	v := &View{ed: ed, lastHead: -1}
	v.SetConfig(cfg)
	ed.SetLayout(&v.geo)
	v.sync()
	return v
}

// SetConfig applies editor options, theme and the editor keymap.
func (v *View) SetConfig(cfg config.Config) {
	v.opts = cfg.Editor
	v.styles = NewStyles(cfg.Theme)
	v.keymap = cfg.Keymap.Editor
	v.geo.TabWidth = cfg.Editor.TabWidth
}

func (v *View) Editor() *editor.Editor { return v.ed }

func (v *View) Styles() Styles { return v.styles }

// Scroll returns the first visible line and cell column.
func (v *View) Scroll() (y, x int) { return v.geo.ScrollY, v.geo.ScrollX }

// SetScroll restores a scroll position, e.g. from a saved session.
func (v *View) SetScroll(y, x int) {
	v.sync()
	v.geo.ScrollY, v.geo.ScrollX = 0, 0
	v.geo.ScrollBy(y)
	if x > 0 {
		v.geo.ScrollX = x
	}
	v.lastHead, v.lastTick = v.ed.Head(), v.tick
}

func (v *View) sync() {
	if v.measured && v.tick == v.ed.ChangeTick() {
		return
	}
	v.geo.Update(v.ed.Content())
	v.tick = v.ed.ChangeTick()
	v.measured = true
}

func (v *View) gutterWidth() int {
	if v.opts.LineNumbers == "off" {
		return 0
	}
	digits := len(strconv.Itoa(v.geo.LineCount()))
	if digits < 3 {
		digits = 3
	}
	return digits + 2
}

// Render draws the editor into area and returns the screen position of the
// cursor; ok is false when the cursor is outside the area.
func (v *View) Render(s tcell.Screen, area editor.Rect) (cx, cy int, ok bool) {
	v.sync()
	v.area = area
	gw := v.gutterWidth()
	if gw >= area.W {
		gw = 0
	}
	v.geo.X, v.geo.Y, v.geo.W, v.geo.H = area.X+gw, area.Y, area.W-gw, area.H

	line, col := v.ed.Cursor()
	if head := v.ed.Head(); head != v.lastHead || v.tick != v.lastTick {
		v.geo.EnsureVisible(line, col)
		v.lastHead, v.lastTick = head, v.tick
	}

	var res blocks.Result
	scopeStart, scopeEnd := -1, -1
	if v.opts.ShowDepth {
		res = v.ed.Blocks()
		scopeStart, scopeEnd = enclosingScope(res, line)
	}

	for row := 0; row < area.H; row++ {
		y := area.Y + row
		idx := v.geo.ScrollY + row
		base := v.styles.Main
		if idx == scopeEnd {
			base = v.styles.ScopeEnd
		}
		clearRow(s, area.X, y, area.W, v.styles.Main)
		if idx >= v.geo.LineCount() {
			continue
		}
		if gw > 0 {
			v.drawGutter(s, area.X, y, gw, idx, line, idx == scopeStart || idx == scopeEnd)
		}
		v.drawLine(s, y, idx, res.DepthAt(idx), base)
	}

	v.drawCompletion(s)

	rect, ok := v.geo.CellRect(line, col)
	return rect.X, rect.Y, ok
}

// enclosingScope picks the block to highlight for the cursor line: the one
// it opens, else the one it closes, else the innermost one containing it.
func enclosingScope(res blocks.Result, line int) (start, end int) {
	if end, ok := res.EndOf(line); ok {
		return line, end
	}
	for s, e := range res.Scopes {
		if e == line {
			return s, e
		}
	}
	if p := res.ParentAt(line); p != blocks.NoParent {
		if end, ok := res.EndOf(p); ok {
			return p, end
		}
		return p, -1
	}
	return -1, -1
}

func clearRow(s tcell.Screen, x, y, w int, style tcell.Style) {
	for i := 0; i < w; i++ {
		s.SetContent(x+i, y, ' ', nil, style)
	}
}

func (v *View) drawGutter(s tcell.Screen, x, y, gw, idx, cur int, scope bool) {
	num := idx + 1
	if v.opts.LineNumbers == "relative" && idx != cur {
		num = idx - cur
		if num < 0 {
			num = -num
		}
	}
	style := v.styles.LineNumber
	if idx == cur {
		style = v.styles.LineNumberActive
	}
	if scope {
		_, bg, _ := v.styles.ScopeEnd.Decompose()
		style = style.Background(bg)
	}
	label := fmt.Sprintf("%*d ", gw-1, num)
	for i, r := range label {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func (v *View) drawLine(s tcell.Screen, y, idx, depth int, base tcell.Style) {
	content := v.ed.Content()
	b := v.geo.lines.Bounds(idx)
	spans := v.ed.SpansIn(b)
	sel := v.ed.Selection()
	marked, hasMarked := v.ed.MarkedRange()
	tab := v.geo.tab()

	put := func(cell int, r rune, style tcell.Style) {
		x := cell - v.geo.ScrollX
		if x < 0 || x >= v.geo.W {
			return
		}
		s.SetContent(v.geo.X+x, y, r, nil, style)
	}

	cell := 0
	leading := true
	for rel, r := range content[b.Start:b.End] {
		off := b.Start + rel
		w := runeCells(r, cell, tab)
		blank := r == ' ' || r == '\t'
		if !blank {
			leading = false
		}

		style := base
		for _, sp := range spans {
			if sp.Start > off {
				break
			}
			if off < sp.End {
				if st, ok := v.styles.syntax(sp.Style); ok {
					style = st
				}
			}
		}
		selected := sel.Contains(off)
		if selected {
			style = v.styles.Selection
		}
		if hasMarked && marked.Contains(off) {
			fg, _, _ := v.styles.Marked.Decompose()
			style = style.Foreground(fg).Underline(true)
		}

		switch {
		case blank:
			for k := 0; k < w; k++ {
				c := cell + k
				if leading && !selected && c%tab == 0 && c/tab < depth {
					put(c, '│', v.styles.DepthGuide)
				} else {
					put(c, ' ', style)
				}
			}
		case !unicode.IsPrint(r):
			put(cell, '?', style)
		default:
			put(cell, r, style)
		}
		cell += w
	}
	// A selected line break shows as one highlighted cell.
	if b.End < len(content) && sel.Contains(b.End) {
		put(cell, ' ', v.styles.Selection)
	}
}

func (v *View) drawCompletion(s tcell.Screen) {
	st := v.ed.Completion()
	if !st.Active {
		return
	}
	lines := v.geo.lines
	line, col, _ := lines.LineCol(v.ed.CompletionPrefix().Start)
	rect, ok := v.geo.CellRect(line, col)
	if !ok {
		return
	}
	drawPopup(s, popup{
		items:    st.Items,
		selected: st.Selected,
		x:        rect.X,
		y:        rect.Y,
		bounds:   v.area,
		styles:   v.styles,
	})
}

// HandleKey applies a key event. Keys bound to editor or view actions and
// typed runes are consumed and "" is returned. A key bound to any other
// action returns it for the host to run.
func (v *View) HandleKey(ev *tcell.EventKey) string {
	if action, ok := v.keymap[KeyString(ev)]; ok {
		switch {
		case editorActions[action]:
			v.ed.Exec(action)
		case action == ActionPageUp:
			v.page(-1)
		case action == ActionPageDown:
			v.page(1)
		default:
			return action
		}
		return ""
	}
	if s, ok := typed(ev); ok {
		v.ed.InsertText(s)
	}
	return ""
}

func (v *View) page(dir int) {
	n := v.geo.H - 1
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		if dir < 0 {
			v.ed.MoveUp(false)
		} else {
			v.ed.MoveDown(false)
		}
	}
	v.geo.ScrollBy(dir * n)
	v.lastHead, v.lastTick = v.ed.Head(), v.ed.ChangeTick()
}

// HandleMouse moves the cursor on click, extends the selection on drag or
// shift-click and scrolls on the wheel.
func (v *View) HandleMouse(ev *tcell.EventMouse) {
	v.sync()
	x, y := ev.Position()
	btn := ev.Buttons()
	switch {
	case btn&tcell.WheelUp != 0:
		v.geo.ScrollBy(-3)
	case btn&tcell.WheelDown != 0:
		v.geo.ScrollBy(3)
	case btn&tcell.Button1 != 0:
		if !v.dragging && !v.inside(x, y) {
			return
		}
		off := v.offsetAt(x, y)
		if v.dragging || ev.Modifiers()&tcell.ModShift != 0 {
			v.ed.SelectTo(off)
		} else {
			v.ed.SetCursor(off)
		}
		v.dragging = true
	default:
		v.dragging = false
	}
}

func (v *View) inside(x, y int) bool {
	a := v.area
	return x >= a.X && x < a.X+a.W && y >= a.Y && y < a.Y+a.H
}

// offsetAt returns the byte offset under a screen cell.
func (v *View) offsetAt(x, y int) int {
	line, col := v.geo.HitTest(x, y)
	return v.geo.lines.Index(line, col)
}
