// Package completion implements the local, prefix-based completion engine:
// it finds the identifier prefix before the cursor and filters keyword and
// registered symbol candidates by it.
package completion

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kobzarvs/qcore/internal/text"
)

type Kind int

const (
	KindFunction Kind = iota
	KindVariable
	KindClass
	KindKeyword
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindVariable:
		return "variable"
	case KindClass:
		return "class"
	case KindKeyword:
		return "keyword"
	default:
		return "text"
	}
}

type Item struct {
	Label  string
	Kind   Kind
	Detail string
}

// State is a snapshot of the engine. Active implies len(Items) > 0 and
// Selected < len(Items).
type State struct {
	Active   bool
	Items    []Item
	Selected int
}

// IsPrefixRune reports whether r can be part of a completion prefix.
func IsPrefixRune(r rune) bool {
	return r == '_' || r == '#' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// PrefixStart scans backward from cursor over prefix characters and returns
// where the prefix begins.
func PrefixStart(content string, cursor int) int {
	cursor = text.Snap(content, cursor)
	start := cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(content[:start])
		if !IsPrefixRune(r) {
			break
		}
		start -= size
	}
	return start
}

// Filter returns the candidates whose label starts with prefix and is
// strictly longer than it, in candidate order, without duplicate labels.
func Filter(candidates []Item, prefix string) []Item {
	if prefix == "" {
		return nil
	}
	var out []Item
	seen := make(map[string]bool)
	for _, item := range candidates {
		if len(item.Label) <= len(prefix) || !strings.HasPrefix(item.Label, prefix) {
			continue
		}
		if seen[item.Label] {
			continue
		}
		seen[item.Label] = true
		out = append(out, item)
	}
	return out
}

// Engine tracks the completion state of one editor.
type Engine struct {
	keywords []Item
	symbols  []Item
	maxItems int

	state  State
	prefix text.Range
}

// NewEngine returns an engine offering keywords. MaxItems <= 0 means no cap.
func NewEngine(keywords []string, maxItems int) *Engine {
	e := &Engine{maxItems: maxItems}
	e.SetKeywords(keywords)
	return e
}

func (e *Engine) SetKeywords(keywords []string) {
	e.keywords = e.keywords[:0]
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		e.keywords = append(e.keywords, Item{Label: kw, Kind: KindKeyword})
	}
}

// RegisterSymbols replaces the registered symbol candidates.
func (e *Engine) RegisterSymbols(items []Item) {
	e.symbols = append(e.symbols[:0], items...)
}

func (e *Engine) Candidates() []Item {
	out := make([]Item, 0, len(e.keywords)+len(e.symbols))
	out = append(out, e.keywords...)
	return append(out, e.symbols...)
}

// Update re-filters against the prefix that ends at cursor. The filtered set
// replaces the previous one and the selection resets to the first item.
func (e *Engine) Update(content string, cursor int) {
	cursor = text.Snap(content, cursor)
	start := PrefixStart(content, cursor)
	e.prefix = text.Range{Start: start, End: cursor}
	items := Filter(e.Candidates(), content[start:cursor])
	if e.maxItems > 0 && len(items) > e.maxItems {
		items = items[:e.maxItems]
	}
	if len(items) == 0 {
		e.Deactivate()
		return
	}
	e.state = State{Active: true, Items: items, Selected: 0}
}

// Deactivate hides completion.
func (e *Engine) Deactivate() {
	e.state = State{}
	e.prefix = text.Range{}
}

func (e *Engine) Active() bool { return e.state.Active }

// State returns a copy of the current state.
func (e *Engine) State() State {
	s := e.state
	s.Items = append([]Item(nil), e.state.Items...)
	return s
}

// PrefixRange returns the byte range of the prefix being completed.
func (e *Engine) PrefixRange() text.Range { return e.prefix }

// Selected returns the highlighted item.
func (e *Engine) Selected() (Item, bool) {
	if !e.state.Active {
		return Item{}, false
	}
	return e.state.Items[e.state.Selected], true
}

// MoveUp moves the selection up one item without wrapping. It reports
// whether completion consumed the move.
func (e *Engine) MoveUp() bool {
	if !e.state.Active {
		return false
	}
	if e.state.Selected > 0 {
		e.state.Selected--
	}
	return true
}

// MoveDown is the mirror of MoveUp.
func (e *Engine) MoveDown() bool {
	if !e.state.Active {
		return false
	}
	if e.state.Selected < len(e.state.Items)-1 {
		e.state.Selected++
	}
	return true
}
