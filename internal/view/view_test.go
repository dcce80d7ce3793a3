package view

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qcore/internal/blocks"
	"github.com/kobzarvs/qcore/internal/config"
	"github.com/kobzarvs/qcore/internal/editor"
	"github.com/kobzarvs/qcore/internal/grammar"
	"github.com/kobzarvs/qcore/internal/text"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)
	return s
}

func plainConfig() config.Config {
	cfg := config.Default()
	cfg.Editor.LineNumbers = "off"
	return cfg
}

func newView(content string, cfg config.Config) *View {
	ed := editor.New(editor.Options{UndoLimit: 100, MaxCompletionItems: 10})
	ed.Load(content)
	return New(ed, cfg)
}

func cellRune(s tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := s.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return 0
	}
	return c.Runes[0]
}

func cellStyle(s tcell.SimulationScreen, x, y int) tcell.Style {
	cells, w, _ := s.GetContents()
	return cells[y*w+x].Style
}

func render(t *testing.T, v *View, w, h int) (tcell.SimulationScreen, int, int) {
	t.Helper()
	s := newScreen(t, w, h)
	cx, cy, ok := v.Render(s, editor.Rect{W: w, H: h})
	if !ok {
		t.Fatalf("cursor not visible")
	}
	s.Show()
	return s, cx, cy
}

func TestKeyString(t *testing.T) {
	cases := []struct {
		ev   *tcell.EventKey
		want string
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), "a"},
		{tcell.NewEventKey(tcell.KeyRune, 'A', tcell.ModShift), "A"},
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), "space"},
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), "alt+x"},
		{tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModMeta), "cmd+s"},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModShift), "shift+left"},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModCtrl|tcell.ModShift), "ctrl+shift+left"},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModAlt|tcell.ModShift), "alt+shift+up"},
		{tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl), "ctrl+z"},
		{tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModNone), "ctrl+a"},
		{tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), "tab"},
		{tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), "shift+tab"},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "enter"},
		{tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), "backspace"},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "esc"},
		{tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone), "del"},
		{tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), "pgdn"},
		{tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModCtrl), "ctrl+home"},
	}
	for _, tc := range cases {
		if got := KeyString(tc.ev); got != tc.want {
			t.Fatalf("KeyString(%v) = %q, want %q", tc.ev.Name(), got, tc.want)
		}
	}
}

func TestGeometryTabsAndWideRunes(t *testing.T) {
	g := Geometry{TabWidth: 4, W: 20, H: 5}
	g.Update("\tab\n日本x")

	if got := g.CellCol(0, 1); got != 4 {
		t.Fatalf("CellCol(0,1) = %d, want 4", got)
	}
	if got := g.CellCol(1, 2); got != 4 {
		t.Fatalf("CellCol(1,2) = %d, want 4", got)
	}
	if got := g.CharCol(0, 2); got != 0 {
		t.Fatalf("CharCol inside tab = %d, want 0", got)
	}
	if got := g.CharCol(1, 3); got != 1 {
		t.Fatalf("CharCol(1,3) = %d, want 1", got)
	}
	if got := g.CharCol(1, 99); got != 3 {
		t.Fatalf("CharCol past end = %d, want 3", got)
	}

	rect, ok := g.CellRect(1, 1)
	if !ok || rect != (editor.Rect{X: 2, Y: 1, W: 2, H: 1}) {
		t.Fatalf("CellRect(1,1) = %+v, %v", rect, ok)
	}
	if line, col := g.HitTest(5, 0); line != 0 || col != 2 {
		t.Fatalf("HitTest(5,0) = %d,%d, want 0,2", line, col)
	}
	if line, col := g.HitTest(0, 9); line != 1 || col != 0 {
		t.Fatalf("HitTest(0,9) = %d,%d, want 1,0", line, col)
	}

	g.ScrollY = 1
	if _, ok := g.CellRect(0, 0); ok {
		t.Fatalf("CellRect above scroll reported visible")
	}
}

func TestEnsureVisible(t *testing.T) {
	g := Geometry{TabWidth: 4, W: 5, H: 4}
	g.Update("0\n1\n2\n3\n4\n5\n6\n7\n8\n9\nabcdefghij")

	g.EnsureVisible(4, 0)
	if g.ScrollY != 1 {
		t.Fatalf("ScrollY = %d, want 1 after stepping one past the edge", g.ScrollY)
	}
	g.EnsureVisible(9, 0)
	if g.ScrollY != 7 {
		t.Fatalf("ScrollY = %d, want 7 after a far jump", g.ScrollY)
	}
	g.EnsureVisible(10, 8)
	if g.ScrollX != 4 {
		t.Fatalf("ScrollX = %d, want 4", g.ScrollX)
	}
	g.EnsureVisible(0, 0)
	if g.ScrollY != 0 || g.ScrollX != 0 {
		t.Fatalf("scroll = %d,%d, want 0,0", g.ScrollY, g.ScrollX)
	}
}

func TestRenderText(t *testing.T) {
	v := newView("ab\n\tc", plainConfig())
	s, cx, cy := render(t, v, 10, 3)

	if got := cellRune(s, 0, 0); got != 'a' {
		t.Fatalf("cell(0,0) = %q, want 'a'", got)
	}
	if got := cellRune(s, 4, 1); got != 'c' {
		t.Fatalf("cell(4,1) = %q, want 'c' after a tab", got)
	}
	if cx != 0 || cy != 0 {
		t.Fatalf("cursor = %d,%d, want 0,0", cx, cy)
	}
}

func TestRenderGutter(t *testing.T) {
	v := newView("ab\ncd", config.Default())
	s, cx, _ := render(t, v, 12, 3)
	if got := cellRune(s, 3, 0); got != '1' {
		t.Fatalf("gutter = %q, want '1'", got)
	}
	if got := cellRune(s, 5, 0); got != 'a' {
		t.Fatalf("text starts with %q, want 'a' after the gutter", got)
	}
	if cx != 5 {
		t.Fatalf("cursor x = %d, want 5", cx)
	}
}

func TestRenderSelectionAndMarked(t *testing.T) {
	v := newView("abcd", plainConfig())
	v.Editor().SetSelection(0, 2)
	s, _, _ := render(t, v, 10, 2)
	sel := v.Styles().Selection
	if cellStyle(s, 0, 0) != sel || cellStyle(s, 1, 0) != sel {
		t.Fatalf("selected cells not drawn with the selection style")
	}
	if cellStyle(s, 2, 0) == sel {
		t.Fatalf("unselected cell drawn with the selection style")
	}

	v.Editor().SetCursor(4)
	v.Editor().ReplaceAndMarkTextInRange(editor.NoRange, "xy", text.UTF16Range{Start: 2, End: 2})
	s, _, _ = render(t, v, 10, 2)
	_, _, attr := cellStyle(s, 4, 0).Decompose()
	if attr&tcell.AttrUnderline == 0 {
		t.Fatalf("marked text not underlined")
	}
}

func TestRenderDepthGuidesAndScope(t *testing.T) {
	cfg := plainConfig()
	cfg.Editor.ShowDepth = true
	v := newView("", cfg)
	v.Editor().SetGrammar(grammar.Builtin("go"))
	v.Editor().Load("if {\n    x\n}\n")

	s, _, _ := render(t, v, 10, 4)
	if got := cellRune(s, 0, 1); got != '│' {
		t.Fatalf("depth guide = %q, want '│'", got)
	}
	if got := cellRune(s, 4, 1); got != 'x' {
		t.Fatalf("cell(4,1) = %q, want 'x'", got)
	}
	if cellStyle(s, 0, 2) != v.Styles().ScopeEnd {
		t.Fatalf("block end line not highlighted")
	}
}

func blocksFor(t *testing.T, content string) blocks.Result {
	t.Helper()
	g, err := grammar.Parse(grammar.Builtin("go"))
	if err != nil {
		t.Fatalf("parse go grammar: %v", err)
	}
	return blocks.Scan(content, g.Blocks)
}

func TestEnclosingScope(t *testing.T) {
	res := blocksFor(t, "a {\n  b {\n  }\n  c\n}\n")
	cases := []struct{ line, start, end int }{
		{0, 0, 4},
		{1, 1, 2},
		{2, 1, 2},
		{3, 0, 4},
	}
	for _, tc := range cases {
		start, end := enclosingScope(res, tc.line)
		if start != tc.start || end != tc.end {
			t.Fatalf("enclosingScope(%d) = %d,%d, want %d,%d", tc.line, start, end, tc.start, tc.end)
		}
	}
}

func TestRenderCompletionPopup(t *testing.T) {
	v := newView("", plainConfig())
	v.Editor().SetGrammar(grammar.Builtin("go"))
	v.Editor().InsertText("fu")
	if !v.Editor().Completion().Active {
		t.Fatalf("completion inactive after typing a keyword prefix")
	}
	s, _, _ := render(t, v, 20, 5)
	if got := cellRune(s, 1, 1); got != 'f' {
		t.Fatalf("popup label starts with %q, want 'f'", got)
	}
	if cellStyle(s, 1, 1) != v.Styles().CompletionSelected {
		t.Fatalf("first item not drawn as selected")
	}
}

func TestHandleKey(t *testing.T) {
	v := newView("abc", plainConfig())
	ed := v.Editor()

	if got := v.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)); got != "" {
		t.Fatalf("typed rune returned %q", got)
	}
	if ed.Content() != "xabc" {
		t.Fatalf("content = %q, want %q", ed.Content(), "xabc")
	}
	v.HandleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModShift))
	if sel := ed.Selection(); sel != (text.Range{Start: 1, End: 2}) {
		t.Fatalf("selection = %+v, want {1 2}", sel)
	}
	v.HandleKey(tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl))
	if ed.Content() != "abc" {
		t.Fatalf("content after undo = %q, want %q", ed.Content(), "abc")
	}
	if got := v.HandleKey(tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl)); got != "save" {
		t.Fatalf("ctrl+s = %q, want %q", got, "save")
	}
	v.HandleKey(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if ed.Content() != " abc" {
		t.Fatalf("content = %q, want a leading space", ed.Content())
	}
}

func TestPageDown(t *testing.T) {
	v := newView("0\n1\n2\n3\n4\n5\n6\n7\n8\n9", plainConfig())
	render(t, v, 5, 4)
	v.HandleKey(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	if line, _ := v.Editor().Cursor(); line != 3 {
		t.Fatalf("cursor line = %d, want 3", line)
	}
	if y, _ := v.Scroll(); y != 3 {
		t.Fatalf("scroll = %d, want 3", y)
	}
}

func TestMouseClickDragShiftClick(t *testing.T) {
	v := newView("hello\nworld", plainConfig())
	render(t, v, 10, 3)
	ed := v.Editor()

	v.HandleMouse(tcell.NewEventMouse(3, 1, tcell.Button1, tcell.ModNone))
	if ed.Anchor() != 9 || ed.Head() != 9 {
		t.Fatalf("click = %d..%d, want 9..9", ed.Anchor(), ed.Head())
	}
	v.HandleMouse(tcell.NewEventMouse(1, 0, tcell.Button1, tcell.ModNone))
	if ed.Anchor() != 9 || ed.Head() != 1 {
		t.Fatalf("drag = %d..%d, want 9..1", ed.Anchor(), ed.Head())
	}
	v.HandleMouse(tcell.NewEventMouse(1, 0, tcell.ButtonNone, tcell.ModNone))

	v.HandleMouse(tcell.NewEventMouse(5, 1, tcell.Button1, tcell.ModShift))
	if ed.Anchor() != 9 || ed.Head() != 11 {
		t.Fatalf("shift-click = %d..%d, want 9..11", ed.Anchor(), ed.Head())
	}
	v.HandleMouse(tcell.NewEventMouse(5, 1, tcell.ButtonNone, tcell.ModNone))

	v.HandleMouse(tcell.NewEventMouse(2, 0, tcell.Button1, tcell.ModNone))
	if ed.Anchor() != 2 || ed.Head() != 2 {
		t.Fatalf("click after release = %d..%d, want 2..2", ed.Anchor(), ed.Head())
	}
}

func TestLayoutFeedsIMEGeometry(t *testing.T) {
	v := newView("ab\ncd", config.Default())
	render(t, v, 12, 3)
	rect, ok := v.Editor().BoundsForRange(text.UTF16Range{Start: 4, End: 5})
	if !ok || rect.X != 6 || rect.Y != 1 {
		t.Fatalf("BoundsForRange = %+v, %v; want x=6 y=1", rect, ok)
	}
	if idx, ok := v.Editor().CharacterIndexForPoint(6, 1); !ok || idx != 4 {
		t.Fatalf("CharacterIndexForPoint = %d, %v; want 4", idx, ok)
	}
}

func TestComposeStatusLine(t *testing.T) {
	if got := composeStatusLine("left", "right", 12); got != "left   right" {
		t.Fatalf("composeStatusLine = %q", got)
	}
	if got := composeStatusLine("a long left side", "r", 6); got != "a lonr" {
		t.Fatalf("composeStatusLine truncated = %q", got)
	}
	if got := composeStatusLine("l", "rightmost", 4); got != "most" {
		t.Fatalf("composeStatusLine overflow = %q", got)
	}
}

func TestParseColor(t *testing.T) {
	if got := parseColor("#102030", tcell.ColorBlack); got != tcell.NewRGBColor(0x10, 0x20, 0x30) {
		t.Fatalf("parseColor hex = %v", got)
	}
	if got := parseColor("red", tcell.ColorBlack); got != tcell.ColorRed {
		t.Fatalf("parseColor name = %v", got)
	}
	if got := parseColor("#12", tcell.ColorBlack); got != tcell.ColorBlack {
		t.Fatalf("parseColor short hex = %v, want fallback", got)
	}
	if got := parseColor("", tcell.ColorGreen); got != tcell.ColorGreen {
		t.Fatalf("parseColor empty = %v, want fallback", got)
	}
}
