package view

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qcore/internal/config"
	"github.com/kobzarvs/qcore/internal/editor"
)

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func typeText(p *Prompt, s string) {
	for _, r := range s {
		p.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func TestPromptSubmitAndCancel(t *testing.T) {
	p := NewPrompt(config.Default(), nil)
	p.Open(":", "")
	typeText(p, "goto 12")
	if got := p.HandleKey(key(tcell.KeyEnter)); got != PromptSubmit {
		t.Fatalf("enter = %v, want PromptSubmit", got)
	}
	if p.Text() != "goto 12" {
		t.Fatalf("Text = %q, want %q", p.Text(), "goto 12")
	}
	if got := p.HandleKey(key(tcell.KeyEscape)); got != PromptCancel {
		t.Fatalf("esc = %v, want PromptCancel", got)
	}
	p.Close()
	if p.Active() || p.Text() != "" {
		t.Fatalf("Close left active=%v text=%q", p.Active(), p.Text())
	}
}

func TestPromptIsSingleLine(t *testing.T) {
	p := NewPrompt(config.Default(), nil)
	p.Open(":", "")
	p.Editor().InsertText("a\nb")
	if p.Text() != "a b" {
		t.Fatalf("Text = %q, want %q", p.Text(), "a b")
	}
}

func TestPromptCompletesCommands(t *testing.T) {
	p := NewPrompt(config.Default(), nil)
	p.SetCommands([]string{"write", "quit", "goto", "grammar"})
	p.Open(":", "")
	typeText(p, "gr")
	st := p.Editor().Completion()
	if !st.Active || len(st.Items) != 1 || st.Items[0].Label != "grammar" {
		t.Fatalf("completion = %+v, want grammar", st)
	}
	if got := p.HandleKey(key(tcell.KeyEscape)); got != PromptNone {
		t.Fatalf("esc with completion open = %v, want PromptNone", got)
	}
	if p.Editor().Completion().Active {
		t.Fatalf("esc left completion open")
	}

	typeText(p, "a")
	p.HandleKey(key(tcell.KeyTab))
	if p.Text() != "grammar" {
		t.Fatalf("Text after tab = %q, want %q", p.Text(), "grammar")
	}
	p.Editor().Undo()
	if p.Text() != "gra" {
		t.Fatalf("Text after undo = %q, want %q", p.Text(), "gra")
	}
}

func TestPromptEnterSubmitsDespiteCompletion(t *testing.T) {
	p := NewPrompt(config.Default(), nil)
	p.SetCommands([]string{"w", "wq"})
	p.Open(":", "")
	typeText(p, "w")
	if got := p.HandleKey(key(tcell.KeyEnter)); got != PromptSubmit {
		t.Fatalf("enter = %v, want PromptSubmit", got)
	}
	if p.Text() != "w" {
		t.Fatalf("Text = %q, want %q", p.Text(), "w")
	}
}

func TestPromptHistory(t *testing.T) {
	p := NewPrompt(config.Default(), nil)
	p.SetHistory([]string{"w", "goto 3"})
	p.Open(":", "")
	typeText(p, "dra")

	up, down := key(tcell.KeyUp), key(tcell.KeyDown)
	steps := []struct {
		ev   *tcell.EventKey
		want string
	}{
		{up, "goto 3"},
		{up, "w"},
		{up, "w"},
		{down, "goto 3"},
		{down, "dra"},
		{down, "dra"},
	}
	for i, st := range steps {
		p.HandleKey(st.ev)
		if p.Text() != st.want {
			t.Fatalf("step %d: Text = %q, want %q", i, p.Text(), st.want)
		}
	}
	if head := p.Editor().Head(); head != len("dra") {
		t.Fatalf("cursor = %d, want end of text", head)
	}
}

func TestPromptRender(t *testing.T) {
	p := NewPrompt(config.Default(), nil)
	p.Open(":", "")
	typeText(p, "wq")

	s := newScreen(t, 20, 3)
	cx := p.Render(s, 0, 2, 20, editor.Rect{W: 20, H: 3})
	s.Show()
	if got := cellRune(s, 0, 2); got != ':' {
		t.Fatalf("label = %q, want ':'", got)
	}
	if got := cellRune(s, 1, 2); got != 'w' {
		t.Fatalf("text = %q, want 'w'", got)
	}
	if cx != 3 {
		t.Fatalf("cursor x = %d, want 3", cx)
	}
}

func TestPromptRenderScrollsLongText(t *testing.T) {
	p := NewPrompt(config.Default(), nil)
	p.Open(":", "0123456789abcdef")

	s := newScreen(t, 8, 1)
	cx := p.Render(s, 0, 0, 8, editor.Rect{W: 8, H: 1})
	s.Show()
	if cx != 7 {
		t.Fatalf("cursor x = %d, want 7", cx)
	}
	if got := cellRune(s, 6, 0); got != 'f' {
		t.Fatalf("last visible rune = %q, want 'f'", got)
	}
}
