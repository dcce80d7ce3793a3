// Package blocks computes per-line nesting depth from block pairs anchored
// at the edges of trimmed lines. It is purely textual: strings and comments
// are not recognized, and a line opens or closes at most one block. A line
// that closes a block is reported at the depth of the line that opened it,
// so a closing brace lines up with its opener.
package blocks

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kobzarvs/qcore/internal/grammar"
)

// NoParent marks a line outside any block.
const NoParent = -1

// Result is the output of one scan. Depth and Parent have one entry per
// line; Scopes maps a block start line to the line that closes it.
type Result struct {
	Depth  []int
	Parent []int
	Scopes map[int]int
}

// Lines returns the number of scanned lines.
func (r Result) Lines() int { return len(r.Depth) }

// DepthAt returns the depth of line, or 0 outside the scanned range.
func (r Result) DepthAt(line int) int {
	if line < 0 || line >= len(r.Depth) {
		return 0
	}
	return r.Depth[line]
}

// ParentAt returns the innermost enclosing block start of line, or NoParent.
func (r Result) ParentAt(line int) int {
	if line < 0 || line >= len(r.Parent) {
		return NoParent
	}
	return r.Parent[line]
}

// EndOf returns the line closing the block started at line.
func (r Result) EndOf(line int) (int, bool) {
	end, ok := r.Scopes[line]
	return end, ok
}

// SplitLines splits content into scan lines. A trailing '\n' terminates the
// last line rather than starting an empty one.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

// Scan runs a single forward pass over content. A line closes a block when
// it starts with an end token and opens one when it starts with a start token
// or ends with a punctuation start token. The end test runs before the start
// test, so "} else {" closes the current block and opens a new one at the
// same depth. An end line is recorded after the pop, at the depth and parent
// of the line that opened its block, so "if {\n x\n}" scans as [0 1 0].
func Scan(content string, pairs []grammar.Pair) Result {
	if len(pairs) == 0 {
		return Result{}
	}
	lines := SplitLines(content)
	res := Result{
		Depth:  make([]int, len(lines)),
		Parent: make([]int, len(lines)),
		Scopes: make(map[int]int),
	}
	var stack []int
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if closesBlock(trimmed, pairs) && len(stack) > 0 {
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			res.Scopes[start] = i
		}

		res.Parent[i] = NoParent
		if len(stack) > 0 {
			res.Parent[i] = stack[len(stack)-1]
		}
		res.Depth[i] = len(stack)
		if opensBlock(trimmed, pairs) {
			stack = append(stack, i)
		}
	}
	return res
}

func opensBlock(line string, pairs []grammar.Pair) bool {
	for _, p := range pairs {
		if startsWithToken(line, p.Start) || endsWithToken(line, p.Start) {
			return true
		}
	}
	return false
}

func closesBlock(line string, pairs []grammar.Pair) bool {
	for _, p := range pairs {
		if startsWithToken(line, p.End) {
			return true
		}
	}
	return false
}

// startsWithToken reports whether line begins with tok. A word token such as
// "if" must not run into a following word character, so "iffy" does not match.
func startsWithToken(line, tok string) bool {
	if tok == "" || !strings.HasPrefix(line, tok) {
		return false
	}
	if !isWordToken(tok) || len(line) == len(tok) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(line[len(tok):])
	return !isWordRune(next)
}

// endsWithToken reports whether line ends with tok. Only punctuation tokens
// count here: "if {" opens a block, "echo motif" does not.
func endsWithToken(line, tok string) bool {
	return tok != "" && !isWordToken(tok) && strings.HasSuffix(line, tok)
}

func isWordToken(tok string) bool {
	return strings.IndexFunc(tok, isWordRune) >= 0
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Scanner holds the configured pairs and the last result.
type Scanner struct {
	pairs  []grammar.Pair
	result Result
}

// SetPairs replaces the configured pairs and clears the last result.
func (s *Scanner) SetPairs(pairs []grammar.Pair) {
	s.pairs = append([]grammar.Pair(nil), pairs...)
	s.result = Result{}
}

func (s *Scanner) Pairs() []grammar.Pair { return s.pairs }

// Rescan rebuilds the result from scratch.
func (s *Scanner) Rescan(content string) Result {
	s.result = Scan(content, s.pairs)
	return s.result
}

// Result returns the result of the last Rescan.
func (s *Scanner) Result() Result { return s.result }
