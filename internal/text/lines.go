package text

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// LineStarts returns the byte offset of every line start. The result always
// begins with 0 and has one more entry per '\n' in s.
func LineStarts(s string) []int {
	starts := make([]int, 1, strings.Count(s, "\n")+1)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// LineCount returns the number of lines in s; the empty string has one line.
func LineCount(s string) int {
	return strings.Count(s, "\n") + 1
}

// LineBounds returns the byte range of line, excluding its '\n'. Line is
// clamped to [0, last line].
func LineBounds(s string, line int) Range {
	return lineBounds(s, LineStarts(s), line)
}

func lineBounds(s string, starts []int, line int) Range {
	if line < 0 {
		line = 0
	}
	if line >= len(starts) {
		line = len(starts) - 1
	}
	start := starts[line]
	end := len(s)
	if line+1 < len(starts) {
		end = starts[line+1] - 1
	}
	return Range{Start: start, End: end}
}

// LineColForIndex locates off in the line table. Column is the number of
// characters between the line start and off.
func LineColForIndex(s string, off int) (line, col, lineStart int) {
	return lineColForIndex(s, LineStarts(s), off)
}

func lineColForIndex(s string, starts []int, off int) (line, col, lineStart int) {
	off = Snap(s, off)
	// Greatest start <= off; the table is sorted ascending.
	line = sort.Search(len(starts), func(i int) bool { return starts[i] > off }) - 1
	if line < 0 {
		line = 0
	}
	lineStart = starts[line]
	col = utf8.RuneCountInString(s[lineStart:off])
	return line, col, lineStart
}

// IndexForLineCol returns the byte offset of (line, col). Line is clamped to
// [0, last line] and col to the line's character length, so the result is
// always a valid offset.
func IndexForLineCol(s string, line, col int) int {
	return indexForLineCol(s, LineStarts(s), line, col)
}

func indexForLineCol(s string, starts []int, line, col int) int {
	bounds := lineBounds(s, starts, line)
	off := bounds.Start
	for n := 0; n < col && off < bounds.End; n++ {
		_, size := utf8.DecodeRuneInString(s[off:bounds.End])
		off += size
	}
	return off
}

// Lines is a line table computed once for a content snapshot, for callers
// that issue many queries against the same content.
type Lines struct {
	s      string
	starts []int
}

func NewLines(s string) *Lines {
	return &Lines{s: s, starts: LineStarts(s)}
}

func (l *Lines) Count() int { return len(l.starts) }

func (l *Lines) Starts() []int { return l.starts }

func (l *Lines) Bounds(line int) Range { return lineBounds(l.s, l.starts, line) }

// Text returns the text of line without its '\n'.
func (l *Lines) Text(line int) string {
	b := l.Bounds(line)
	return l.s[b.Start:b.End]
}

func (l *Lines) LineCol(off int) (line, col, lineStart int) {
	return lineColForIndex(l.s, l.starts, off)
}

func (l *Lines) Index(line, col int) int {
	return indexForLineCol(l.s, l.starts, line, col)
}

// CharLen returns the character length of line.
func (l *Lines) CharLen(line int) int {
	b := l.Bounds(line)
	return utf8.RuneCountInString(l.s[b.Start:b.End])
}
