package view

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qcore/internal/editor"
	"github.com/kobzarvs/qcore/internal/text"
)

// Geometry maps (line, character column) positions to terminal cells for
// the text area of a View. Tabs expand to the next multiple of TabWidth and
// wide runes take two cells.
type Geometry struct {
	// Text area origin and size on screen, excluding the gutter.
	X, Y, W, H int
	// First visible line and first visible cell column.
	ScrollY, ScrollX int
	TabWidth int

	lines *text.Lines
}

var _ editor.Layout = (*Geometry)(nil)

// Update replaces the content the geometry measures.
func (g *Geometry) Update(content string) {
	g.lines = text.NewLines(content)
}

func (g *Geometry) tab() int {
	if g.TabWidth < 1 {
		return 4
	}
	return g.TabWidth
}

// LineCount returns the number of lines in the measured content.
func (g *Geometry) LineCount() int {
	if g.lines == nil {
		return 1
	}
	return g.lines.Count()
}

func (g *Geometry) lineText(line int) string {
	if g.lines == nil {
		return ""
	}
	return g.lines.Text(line)
}

// runeCells returns how many cells r occupies when it starts at cell col.
func runeCells(r rune, col, tab int) int {
	if r == '\t' {
		return tab - col%tab
	}
	w := runewidth.RuneWidth(r)
	if w < 1 {
		// Control and zero-width runes still get a cell so they stay
		// addressable by the cursor.
		return 1
	}
	return w
}

// CellCol returns the cell column where character col of line starts.
func (g *Geometry) CellCol(line, col int) int {
	s := g.lineText(line)
	tab := g.tab()
	cells := 0
	for n := 0; n < col && s != ""; n++ {
		r, size := utf8.DecodeRuneInString(s)
		cells += runeCells(r, cells, tab)
		s = s[size:]
	}
	return cells
}

// CharCol returns the character column under cell column cell of line. A
// cell inside a tab or wide rune resolves to that character; cells past the
// end resolve to the line length.
func (g *Geometry) CharCol(line, cell int) int {
	s := g.lineText(line)
	tab := g.tab()
	cells, col := 0, 0
	for s != "" {
		r, size := utf8.DecodeRuneInString(s)
		w := runeCells(r, cells, tab)
		if cell < cells+w {
			return col
		}
		cells += w
		col++
		s = s[size:]
	}
	return col
}

// CellRect returns the screen cell of character col on line, sized to the
// character. Positions scrolled out of the area report false.
func (g *Geometry) CellRect(line, col int) (editor.Rect, bool) {
	if line < g.ScrollY || line >= g.ScrollY+g.H {
		return editor.Rect{}, false
	}
	start := g.CellCol(line, col)
	x := start - g.ScrollX
	if x < 0 || x >= g.W {
		return editor.Rect{}, false
	}
	w := g.CellCol(line, col+1) - start
	if w < 1 {
		w = 1
	}
	return editor.Rect{X: g.X + x, Y: g.Y + line - g.ScrollY, W: w, H: 1}, true
}

// HitTest returns the line and character column under screen cell (x, y),
// clamped to the content.
func (g *Geometry) HitTest(x, y int) (line, col int) {
	line = y - g.Y + g.ScrollY
	if line < 0 {
		line = 0
	}
	if n := g.LineCount(); line >= n {
		line = n - 1
	}
	cell := x - g.X + g.ScrollX
	if cell < 0 {
		cell = 0
	}
	return line, g.CharCol(line, cell)
}

// EnsureVisible scrolls so (line, col) is inside the area. A target far
// outside the area is centered vertically.
func (g *Geometry) EnsureVisible(line, col int) {
	if g.H > 0 {
		switch {
		case line < g.ScrollY-1 || line >= g.ScrollY+g.H+1:
			g.ScrollY = line - g.H/2
		case line < g.ScrollY:
			g.ScrollY = line
		case line >= g.ScrollY+g.H:
			g.ScrollY = line - g.H + 1
		}
	}
	if g.ScrollY < 0 {
		g.ScrollY = 0
	}
	if g.W > 0 {
		cell := g.CellCol(line, col)
		switch {
		case cell < g.ScrollX:
			g.ScrollX = cell
		case cell >= g.ScrollX+g.W:
			g.ScrollX = cell - g.W + 1
		}
	}
	if g.ScrollX < 0 {
		g.ScrollX = 0
	}
}

// ScrollBy moves the first visible line by delta, clamped to the content.
func (g *Geometry) ScrollBy(delta int) {
	g.ScrollY += delta
	if max := g.LineCount() - 1; g.ScrollY > max {
		g.ScrollY = max
	}
	if g.ScrollY < 0 {
		g.ScrollY = 0
	}
}
