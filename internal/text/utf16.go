package text

import "unicode/utf16"

// UTF16Range is a range in UTF-16 code units, the address space used by
// input-method protocols. It is not normalized: a reversed range maps to a
// reversed byte range.
type UTF16Range struct {
	Start int
	End   int
}

func (r UTF16Range) Len() int { return r.End - r.Start }

func (r UTF16Range) IsEmpty() bool { return r.Start == r.End }

func utf16Width(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	// Unpaired surrogates never come out of ranging over a string; anything
	// else invalid is encoded as U+FFFD.
	return 1
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}
	return n
}

// ByteToUTF16 counts the UTF-16 code units of every character strictly
// before off. Off is snapped to a character boundary first.
func ByteToUTF16(s string, off int) int {
	off = Snap(s, off)
	n := 0
	for _, r := range s[:off] {
		n += utf16Width(r)
	}
	return n
}

// UTF16ToByte returns the byte offset of the character at which the running
// UTF-16 width would exceed u. A u inside a surrogate pair maps to the start
// of that character; a u past the end maps to len(s).
func UTF16ToByte(s string, u int) int {
	if u <= 0 {
		return 0
	}
	acc := 0
	for i, r := range s {
		w := utf16Width(r)
		if acc+w > u {
			return i
		}
		acc += w
	}
	return len(s)
}

// ByteRangeToUTF16 maps both ends of r independently.
func ByteRangeToUTF16(s string, r Range) UTF16Range {
	return UTF16Range{Start: ByteToUTF16(s, r.Start), End: ByteToUTF16(s, r.End)}
}

// UTF16RangeToBytes maps both ends of r independently. The mapping is
// monotonic, so empty and reversed ranges stay empty and reversed.
func UTF16RangeToBytes(s string, r UTF16Range) Range {
	return Range{Start: UTF16ToByte(s, r.Start), End: UTF16ToByte(s, r.End)}
}
