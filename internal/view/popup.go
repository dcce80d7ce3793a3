package view

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qcore/internal/completion"
	"github.com/kobzarvs/qcore/internal/editor"
)

type popup struct {
	items    []completion.Item
	selected int
	// Screen cell of the completed prefix start.
	x, y   int
	bounds editor.Rect
	// above places the list over the anchor row instead of below it.
	above  bool
	styles Styles
}

// drawPopup draws a completion list next to an anchor cell, flipping to
// the other side of the anchor when it does not fit.
func drawPopup(s tcell.Screen, p popup) {
	if len(p.items) == 0 || p.bounds.W < 4 {
		return
	}
	labelW, detailW := 0, 0
	for _, it := range p.items {
		labelW = max(labelW, runewidth.StringWidth(it.Label))
		detailW = max(detailW, runewidth.StringWidth(itemDetail(it)))
	}
	width := labelW + 2
	if detailW > 0 {
		width += detailW + 1
	}
	width = min(width, p.bounds.W)

	top, bottom := p.bounds.Y, p.bounds.Y+p.bounds.H
	below := bottom - (p.y + 1)
	over := p.y - top
	height := len(p.items)
	y := p.y + 1
	if p.above && over >= min(height, below+1) || !p.above && below < height && over > below {
		height = min(height, over)
		y = p.y - height
	} else {
		height = min(height, below)
	}
	if height <= 0 {
		return
	}

	x := p.x - 1
	if x+width > p.bounds.X+p.bounds.W {
		x = p.bounds.X + p.bounds.W - width
	}
	x = max(x, p.bounds.X)

	first := 0
	if p.selected >= height {
		first = p.selected - height + 1
	}
	for row := 0; row < height; row++ {
		i := first + row
		if i >= len(p.items) {
			break
		}
		style, detailStyle := p.styles.Completion, p.styles.CompletionDetail
		if i == p.selected {
			style = p.styles.CompletionSelected
			_, bg, _ := style.Decompose()
			detailStyle = detailStyle.Background(bg)
		}
		clearRow(s, x, y+row, width, style)
		drawString(s, x+1, y+row, x+width, p.items[i].Label, style)
		if d := itemDetail(p.items[i]); d != "" {
			dx := x + width - 1 - runewidth.StringWidth(d)
			drawString(s, max(dx, x+labelW+2), y+row, x+width-1, d, detailStyle)
		}
	}
}

func itemDetail(it completion.Item) string {
	if it.Detail != "" {
		return it.Detail
	}
	return it.Kind.String()
}

// drawString draws str from x, clipped before limit, and returns the
// column after the last drawn cell.
func drawString(s tcell.Screen, x, y, limit int, str string, style tcell.Style) int {
	for _, r := range str {
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		if x+w > limit {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}

// composeStatusLine lays out left and right within width, truncating left
// first.
func composeStatusLine(left, right string, width int) string {
	if width <= 0 {
		return ""
	}
	lw, rw := runewidth.StringWidth(left), runewidth.StringWidth(right)
	if lw+rw > width {
		if rw >= width {
			return runewidth.TruncateLeft(right, rw-width, "")
		}
		left = runewidth.Truncate(left, width-rw, "")
		lw = runewidth.StringWidth(left)
	}
	return left + runewidth.FillLeft(right, width-lw)
}

// DrawStatus fills row y of width w with a status line.
func DrawStatus(s tcell.Screen, x, y, w int, left, right string, style tcell.Style) {
	clearRow(s, x, y, w, style)
	drawString(s, x, y, x+w, composeStatusLine(left, right, w), style)
}
