package view

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qcore/internal/config"
	"github.com/kobzarvs/qcore/internal/editor"
	"github.com/kobzarvs/qcore/internal/text"
)

// Prompt-only actions.
const (
	ActionSubmit      = "submit"
	ActionCancel      = "cancel"
	ActionHistoryPrev = "history_prev"
	ActionHistoryNext = "history_next"
)

type PromptResult int

const (
	PromptNone PromptResult = iota
	PromptSubmit
	PromptCancel
)

// Prompt is the one-line command box. Its text lives in a single-line
// editor.Editor, so it edits, selects and completes like the main view.
type Prompt struct {
	ed     *editor.Editor
	geo    Geometry
	keymap map[string]string
	styles Styles

	label  string
	active bool

	history []string
	histPos int
	draft   string
}

func NewPrompt(cfg config.Config, clip editor.Clipboard) *Prompt {
	ed := editor.New(editor.Options{
		SingleLine:         true,
		UndoLimit:          100,
		MaxCompletionItems: cfg.Editor.CompletionMaxItems,
		Language:           "prompt",
	})
	ed.SetClipboard(clip)
	p := &Prompt{ed: ed}
	p.geo.H = 1
	ed.SetLayout(&p.geo)
	p.SetConfig(cfg)
	return p
}

func (p *Prompt) SetConfig(cfg config.Config) {
	p.keymap = cfg.Keymap.Prompt
	p.styles = NewStyles(cfg.Theme)
	p.geo.TabWidth = cfg.Editor.TabWidth
}

// SetCommands offers names as completion candidates.
func (p *Prompt) SetCommands(names []string) {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	p.ed.SetGrammar("name = \"prompt\"\nkeywords = [" + strings.Join(quoted, ", ") + "]\n")
}

func (p *Prompt) SetHistory(h []string) {
	p.history = append(p.history[:0], h...)
	p.histPos = len(p.history)
}

// Open activates the prompt with initial text and the cursor at its end.
func (p *Prompt) Open(label, initial string) {
	p.label = label
	p.active = true
	p.histPos = len(p.history)
	p.draft = ""
	p.load(initial)
}

func (p *Prompt) load(s string) {
	p.ed.Load(s)
	p.ed.FileEnd(false)
}

func (p *Prompt) Close() {
	p.active = false
	p.ed.Load("")
}

func (p *Prompt) Active() bool { return p.active }

func (p *Prompt) Label() string { return p.label }

func (p *Prompt) Text() string { return p.ed.Content() }

func (p *Prompt) Editor() *editor.Editor { return p.ed }

// HandleKey applies a key event to the prompt. Submit always submits; Tab
// confirms an open completion list and Esc closes it before cancelling.
func (p *Prompt) HandleKey(ev *tcell.EventKey) PromptResult {
	action, ok := p.keymap[KeyString(ev)]
	if !ok {
		if s, ok := typed(ev); ok {
			p.ed.InsertText(s)
		}
		return PromptNone
	}
	completing := p.ed.Completion().Active
	switch action {
	case ActionSubmit:
		p.ed.Exec(editor.ActionCompletionCancel)
		return PromptSubmit
	case ActionCancel:
		if completing {
			p.ed.Exec(editor.ActionCompletionCancel)
			return PromptNone
		}
		return PromptCancel
	case editor.ActionComplete:
		if completing {
			p.ed.ConfirmCompletion()
		} else {
			p.ed.Exec(editor.ActionComplete)
		}
	case ActionHistoryPrev:
		if completing {
			p.ed.Exec(editor.ActionMoveUp)
		} else {
			p.recall(-1)
		}
	case ActionHistoryNext:
		if completing {
			p.ed.Exec(editor.ActionMoveDown)
		} else {
			p.recall(1)
		}
	default:
		p.ed.Exec(action)
	}
	return PromptNone
}

func (p *Prompt) recall(dir int) {
	if len(p.history) == 0 {
		return
	}
	if p.histPos == len(p.history) {
		p.draft = p.Text()
	}
	pos := p.histPos + dir
	if pos < 0 || pos > len(p.history) {
		return
	}
	p.histPos = pos
	if pos == len(p.history) {
		p.load(p.draft)
		return
	}
	p.load(p.history[pos])
}

// Render draws the label and text on row y and returns the cursor column.
// Completion items are listed above the row, inside bounds.
func (p *Prompt) Render(s tcell.Screen, x, y, w int, bounds editor.Rect) int {
	clearRow(s, x, y, w, p.styles.Command)
	lx := drawString(s, x, y, x+w, p.label, p.styles.Command)

	p.geo.Update(p.ed.Content())
	p.geo.X, p.geo.Y, p.geo.W = lx, y, x+w-lx
	_, col := p.ed.Cursor()
	p.geo.EnsureVisible(0, col)

	sel := p.ed.Selection()
	content := p.ed.Content()
	cell := 0
	for off, r := range content {
		cw := runeCells(r, cell, p.geo.tab())
		style := p.styles.Command
		if sel.Contains(off) {
			style = p.styles.Selection
		}
		if vx := cell - p.geo.ScrollX; vx >= 0 && vx+cw <= p.geo.W {
			if r == '\t' {
				clearRow(s, p.geo.X+vx, y, cw, style)
			} else {
				s.SetContent(p.geo.X+vx, y, r, nil, style)
			}
		}
		cell += cw
	}

	if st := p.ed.Completion(); st.Active {
		_, pcol, _ := text.LineColForIndex(content, p.ed.CompletionPrefix().Start)
		px := p.geo.X + p.geo.CellCol(0, pcol) - p.geo.ScrollX
		drawPopup(s, popup{
			items:    st.Items,
			selected: st.Selected,
			x:        px,
			y:        y,
			bounds:   bounds,
			above:    true,
			styles:   p.styles,
		})
	}

	cx := p.geo.X + p.geo.CellCol(0, col) - p.geo.ScrollX
	return min(cx, x+w-1)
}
