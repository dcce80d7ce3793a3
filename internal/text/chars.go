package text

import (
	"unicode"
	"unicode/utf8"
)

// IsBoundary reports whether off is within [0, len(s)] and not inside a
// multi-byte character.
func IsBoundary(s string, off int) bool {
	if off < 0 || off > len(s) {
		return false
	}
	return off == len(s) || utf8.RuneStart(s[off])
}

// Snap clamps off to [0, len(s)] and moves it back to the nearest preceding
// character boundary.
func Snap(s string, off int) int {
	if off <= 0 {
		return 0
	}
	if off >= len(s) {
		return len(s)
	}
	for off > 0 && !utf8.RuneStart(s[off]) {
		off--
	}
	return off
}

// PrevCharIndex returns the offset of the character before off, or 0.
func PrevCharIndex(s string, off int) int {
	off = Snap(s, off)
	if off == 0 {
		return 0
	}
	_, size := utf8.DecodeLastRuneInString(s[:off])
	return off - size
}

// NextCharIndex returns the offset just after the character at off, or len(s).
func NextCharIndex(s string, off int) int {
	off = Snap(s, off)
	if off >= len(s) {
		return len(s)
	}
	_, size := utf8.DecodeRuneInString(s[off:])
	return off + size
}

// CharCount returns the number of characters in s[start:end].
func CharCount(s string, start, end int) int {
	start, end = Snap(s, start), Snap(s, end)
	if end <= start {
		return 0
	}
	return utf8.RuneCountInString(s[start:end])
}

// IsWordRune reports whether r belongs to a word for word motions.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordLeft returns the start of the word at or before off, skipping any
// non-word characters directly before it.
func WordLeft(s string, off int) int {
	off = Snap(s, off)
	if off > 0 && s[off-1] == '\n' {
		return off - 1
	}
	for off > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:off])
		if IsWordRune(r) || r == '\n' {
			break
		}
		off -= size
	}
	for off > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:off])
		if !IsWordRune(r) {
			break
		}
		off -= size
	}
	return off
}

// WordRight returns the end of the word at or after off, skipping any
// non-word characters directly after it.
func WordRight(s string, off int) int {
	off = Snap(s, off)
	if off < len(s) && s[off] == '\n' {
		return off + 1
	}
	for off < len(s) {
		r, size := utf8.DecodeRuneInString(s[off:])
		if IsWordRune(r) || r == '\n' {
			break
		}
		off += size
	}
	for off < len(s) {
		r, size := utf8.DecodeRuneInString(s[off:])
		if !IsWordRune(r) {
			break
		}
		off += size
	}
	return off
}
