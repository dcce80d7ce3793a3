// Package text implements the byte-addressed document buffer shared by every
// text input in qcore, plus the pure offset helpers built on top of it:
// character boundary snapping, UTF-16 mapping and line/column addressing.
//
// Offsets are byte indexes into UTF-8 content. A valid offset lies in
// [0, len(content)] and falls on a character boundary.
package text

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrOffset is returned by the strict Buffer API when an offset is out of
// bounds or inside a multi-byte character.
var ErrOffset = errors.New("text: offset out of range or not on a character boundary")

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) IsEmpty() bool { return r.Start == r.End }

// Normalize returns r with Start <= End.
func (r Range) Normalize() Range {
	if r.Start <= r.End {
		return r
	}
	return Range{Start: r.End, End: r.Start}
}

// Contains reports whether off is in [Start, End).
func (r Range) Contains(off int) bool {
	return r.Start <= off && off < r.End
}

// Buffer owns the text of one document. Mutations are copy-on-write splices
// of the whole string, which keeps every Read result immutable.
type Buffer struct {
	s string
}

func NewBuffer(content string) *Buffer {
	return &Buffer{s: sanitize(content)}
}

// String returns the full content.
func (b *Buffer) String() string { return b.s }

// Len returns the content length in bytes.
func (b *Buffer) Len() int { return len(b.s) }

// Set replaces the content wholesale, as on document load.
func (b *Buffer) Set(content string) {
	b.s = sanitize(content)
}

// Valid reports whether off is a valid offset into the buffer.
func (b *Buffer) Valid(off int) bool {
	return IsBoundary(b.s, off)
}

// Snap clamps off into the buffer and moves it back to the nearest
// preceding character boundary.
func (b *Buffer) Snap(off int) int {
	return Snap(b.s, off)
}

// SnapRange snaps both ends of r and normalizes it.
func (b *Buffer) SnapRange(r Range) Range {
	return Range{Start: b.Snap(r.Start), End: b.Snap(r.End)}.Normalize()
}

// Read returns the text in r. Out of range or misaligned bounds are snapped.
func (b *Buffer) Read(r Range) string {
	r = b.SnapRange(r)
	return b.s[r.Start:r.End]
}

// Insert splices text in at off. Invalid UTF-8 in text is replaced with
// U+FFFD so the buffer never holds a partial character.
func (b *Buffer) Insert(at int, text string) error {
	if !b.Valid(at) {
		return ErrOffset
	}
	if text == "" {
		return nil
	}
	text = sanitize(text)
	var sb strings.Builder
	sb.Grow(len(b.s) + len(text))
	sb.WriteString(b.s[:at])
	sb.WriteString(text)
	sb.WriteString(b.s[at:])
	b.s = sb.String()
	return nil
}

// Delete removes r and returns the removed text.
func (b *Buffer) Delete(r Range) (string, error) {
	if r.Start > r.End || !b.Valid(r.Start) || !b.Valid(r.End) {
		return "", ErrOffset
	}
	if r.IsEmpty() {
		return "", nil
	}
	removed := b.s[r.Start:r.End]
	b.s = b.s[:r.Start] + b.s[r.End:]
	return removed, nil
}

func sanitize(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}
