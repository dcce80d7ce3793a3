package view

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qcore/internal/config"
)

// Styles holds the tcell styles derived from a config.Theme.
type Styles struct {
	Main               tcell.Style
	Status             tcell.Style
	Command            tcell.Style
	LineNumber         tcell.Style
	LineNumberActive   tcell.Style
	Selection          tcell.Style
	Marked             tcell.Style
	DepthGuide         tcell.Style
	ScopeEnd           tcell.Style
	Completion         tcell.Style
	CompletionSelected tcell.Style
	CompletionDetail   tcell.Style
	Syntax             map[string]tcell.Style
}

func NewStyles(t config.Theme) Styles {
	fg := parseColor(t.Foreground, tcell.ColorDefault)
	bg := parseColor(t.Background, tcell.ColorDefault)
	main := tcell.StyleDefault.Foreground(fg).Background(bg)
	compBg := parseColor(t.CompletionBackground, bg)

	st := Styles{
		Main: main,
		Status: tcell.StyleDefault.
			Foreground(parseColor(t.StatuslineForeground, fg)).
			Background(parseColor(t.StatuslineBackground, bg)),
		Command: tcell.StyleDefault.
			Foreground(parseColor(t.CommandlineForeground, fg)).
			Background(parseColor(t.CommandlineBackground, bg)),
		LineNumber:       main.Foreground(parseColor(t.LineNumberForeground, fg)),
		LineNumberActive: main.Foreground(parseColor(t.LineNumberActiveForeground, fg)),
		Selection: tcell.StyleDefault.
			Foreground(parseColor(t.SelectionForeground, fg)).
			Background(parseColor(t.SelectionBackground, tcell.ColorGray)),
		Marked:     main.Foreground(parseColor(t.MarkedForeground, fg)).Underline(true),
		DepthGuide: main.Foreground(parseColor(t.DepthGuideForeground, tcell.ColorGray)),
		ScopeEnd:   main.Background(parseColor(t.ScopeEndBackground, bg)),
		Completion: tcell.StyleDefault.
			Foreground(parseColor(t.CompletionForeground, fg)).
			Background(compBg),
		CompletionSelected: tcell.StyleDefault.
			Foreground(parseColor(t.CompletionForeground, fg)).
			Background(parseColor(t.CompletionSelected, tcell.ColorGray)),
		CompletionDetail: tcell.StyleDefault.
			Foreground(parseColor(t.CompletionDetail, tcell.ColorGray)).
			Background(compBg),
		Syntax: map[string]tcell.Style{},
	}
	for name, c := range t.SyntaxColors() {
		if c == "" {
			continue
		}
		st.Syntax[name] = main.Foreground(parseColor(c, fg))
	}
	return st
}

// syntax returns the style for a span style name. Dotted names such as
// "function.method" fall back to their first component.
func (st Styles) syntax(name string) (tcell.Style, bool) {
	if s, ok := st.Syntax[name]; ok {
		return s, true
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		s, ok := st.Syntax[name[:i]]
		return s, ok
	}
	return tcell.Style{}, false
}

// parseColor accepts "#RRGGBB", "default" or a tcell color name.
func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") {
		if len(name) != 7 {
			return fallback
		}
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err != nil {
			return fallback
		}
		return tcell.NewRGBColor(int32(v>>16&0xff), int32(v>>8&0xff), int32(v&0xff))
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	if c := tcell.GetColor(name); c != tcell.ColorDefault {
		return c
	}
	return fallback
}
