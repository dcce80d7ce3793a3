// Package app wires the editor core to the terminal, the tokenizer, the
// language servers and the session store, and runs the event loop.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"

	"github.com/kobzarvs/qcore/internal/clipboard"
	"github.com/kobzarvs/qcore/internal/completion"
	"github.com/kobzarvs/qcore/internal/config"
	"github.com/kobzarvs/qcore/internal/editor"
	"github.com/kobzarvs/qcore/internal/logger"
	"github.com/kobzarvs/qcore/internal/lsp"
	"github.com/kobzarvs/qcore/internal/session"
	"github.com/kobzarvs/qcore/internal/treesitter"
	"github.com/kobzarvs/qcore/internal/view"
)

// Host actions a keymap may bind besides editor and view actions.
const (
	actionSave   = "save"
	actionQuit   = "quit"
	actionPrompt = "prompt"
)

// Files above this size are not tokenized.
const maxHighlightBytes = 8 << 20

// App is the top-level runtime for qcore.
type App struct {
	args []string

	cfg   config.Config
	langs config.Languages
	lang  *config.Language

	ed     *editor.Editor
	view   *view.View
	prompt *view.Prompt
	ts     *treesitter.Engine
	ls     *lsp.Manager
	sess   *session.Manager

	screen  tcell.Screen
	changes <-chan config.Change
	cancel  context.CancelFunc

	grammar    string
	tsLanguage string
	// Document versions last sent to the collaborators and last written.
	synced int
	saved  int
	// savedText is the content as last loaded or written.
	savedText string

	message  string
	pasting  bool
	pasteBuf strings.Builder
	quit     bool
}

func New(args []string) *App {
	return &App{args: args}
}

func (a *App) Run() (err error) {
	if err := logger.Init(os.Getenv("QCORE_DEBUG") != ""); err != nil {
		fmt.Fprintln(os.Stderr, "qcore: logging disabled:", err)
	}
	defer logger.Close()

	if err := a.setup(); err != nil {
		return multierr.Append(err, a.shutdown())
	}
	defer func() { err = multierr.Append(err, a.shutdown()) }()

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	s.EnableMouse()
	s.EnablePaste()

	a.attach(s)
	a.loop()
	return nil
}

// setup loads configuration, starts the collaborators and opens the file
// named on the command line.
func (a *App) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}
	a.cfg, a.langs = cfg, langs

	a.ts = treesitter.New()
	if err := a.ts.Start(); err != nil {
		return err
	}
	a.ls = lsp.NewManager(langs)
	if err := a.ls.Start(); err != nil {
		return err
	}
	a.sess, err = session.NewManager()
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	clip := clipboard.NewSystem()
	a.ed = editor.New(editor.Options{
		UndoLimit:          cfg.Editor.UndoLimit,
		MaxCompletionItems: cfg.Editor.CompletionMaxItems,
	})
	a.ed.SetClipboard(clip)
	a.view = view.New(a.ed, cfg)
	a.prompt = view.NewPrompt(cfg, clip)
	a.prompt.SetCommands(commandNames())
	a.prompt.SetHistory(a.sess.History())
	a.synced = -1

	path := ""
	if len(a.args) > 0 {
		path = a.args[0]
	}
	if err := a.open(path); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if changes, err := config.Watch(ctx); err != nil {
		logger.Warn("app: config watch disabled", "error", err)
	} else {
		a.changes = changes
	}
	return nil
}

// shutdown records the session state and stops the collaborators.
func (a *App) shutdown() error {
	if a.cancel != nil {
		a.cancel()
	}
	var err error
	if a.sess != nil {
		if a.ed != nil && a.ed.Path() != "" {
			a.rememberFile()
		}
		err = multierr.Append(err, a.sess.Stop())
	}
	if a.ls != nil {
		err = multierr.Append(err, a.ls.Stop())
	}
	if a.ts != nil {
		err = multierr.Append(err, a.ts.Stop())
	}
	return err
}

// attach binds a screen and starts forwarding collaborator output to it as
// interrupt events.
func (a *App) attach(s tcell.Screen) {
	a.screen = s
	go a.forward()
}

func (a *App) forward() {
	post := func(v any) {
		if err := a.screen.PostEvent(tcell.NewEventInterrupt(v)); err != nil {
			logger.Debug("app: event dropped", "error", err)
		}
	}
	for {
		select {
		case p := <-a.ts.Results():
			post(p)
		case p := <-a.ls.Completions():
			post(p)
		case ev := <-a.ls.Events():
			post(ev)
		case ch, ok := <-a.changes:
			if !ok {
				return
			}
			post(ch)
		}
	}
}

func (a *App) loop() {
	for !a.quit {
		a.render()
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		a.handle(ev)
		a.sync()
	}
}

func (a *App) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if a.pasting {
			a.collectPaste(ev)
			return
		}
		a.message = ""
		if a.prompt.Active() {
			a.promptKey(ev)
			return
		}
		a.runAction(a.view.HandleKey(ev))
	case *tcell.EventPaste:
		if ev.Start() {
			a.pasting = true
			a.pasteBuf.Reset()
			return
		}
		a.pasting = false
		if a.prompt.Active() {
			a.prompt.Editor().InsertText(a.pasteBuf.String())
		} else {
			a.ed.InsertText(a.pasteBuf.String())
		}
	case *tcell.EventMouse:
		if !a.prompt.Active() {
			a.view.HandleMouse(ev)
		}
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventInterrupt:
		a.deliver(ev.Data())
	}
}

func (a *App) collectPaste(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		a.pasteBuf.WriteRune(ev.Rune())
	case tcell.KeyEnter:
		a.pasteBuf.WriteByte('\n')
	case tcell.KeyTab:
		a.pasteBuf.WriteByte('\t')
	}
}

func (a *App) runAction(action string) {
	switch action {
	case "":
	case actionSave:
		a.report(a.save(""))
	case actionQuit:
		a.report(a.tryQuit(false))
	case actionPrompt:
		a.prompt.Open(":", "")
	default:
		logger.Debug("app: unbound action", "action", action)
	}
}

func (a *App) promptKey(ev *tcell.EventKey) {
	switch a.prompt.HandleKey(ev) {
	case view.PromptSubmit:
		line := strings.TrimSpace(a.prompt.Text())
		a.prompt.Close()
		if line == "" {
			return
		}
		a.sess.PushHistory(line)
		a.prompt.SetHistory(a.sess.History())
		a.report(a.runCommand(line))
	case view.PromptCancel:
		a.prompt.Close()
	}
}

// deliver applies collaborator output. Payloads computed for an older
// document version are dropped by the editor.
func (a *App) deliver(v any) {
	switch v := v.(type) {
	case editor.HighlightPayload:
		a.ed.ApplyHighlights(v)
	case editor.CompletionPayload:
		a.ed.ApplyCompletions(v)
	case lsp.Event:
		if v.Kind == "error" || v.Kind == "message" {
			a.message = v.Message
		}
	case config.Change:
		a.reload(v)
	}
}

// sync sends content changes to the tokenizer and the language server.
func (a *App) sync() {
	version := a.ed.Version()
	if version == a.synced {
		return
	}
	a.synced = version
	edits, incremental := a.ed.ConsumeEdits()

	if a.tsLanguage != "" {
		req := treesitter.Request{
			URI:      a.ed.URI(),
			Language: a.tsLanguage,
			Version:  version,
			Text:     a.ed.Content(),
		}
		if incremental {
			req.Edits = append([]editor.Edit{}, edits...)
		}
		a.ts.Parse(req)
	}

	path := a.ed.Path()
	if path == "" {
		return
	}
	a.ls.ChangeFile(path, version, a.ed.Content())
	content, head := a.ed.Content(), a.ed.Head()
	if a.ed.Selection().IsEmpty() && completion.PrefixStart(content, head) < head {
		line, col := a.ed.Position()
		a.ls.Complete(lsp.CompletionRequest{
			URI:     a.ed.URI(),
			Path:    path,
			Version: version,
			Line:    line,
			Column:  col,
		})
	}
}

func (a *App) report(err error) {
	if err != nil {
		logger.Warn("app: command failed", "error", err)
		a.message = err.Error()
	}
}

// modified reports whether the content differs from the file. Undoing back
// to the saved text clears it.
func (a *App) modified() bool {
	if a.ed.Version() == a.saved {
		return false
	}
	if a.ed.Len() != len(a.savedText) || a.ed.Content() != a.savedText {
		return true
	}
	a.saved = a.ed.Version()
	return false
}

func (a *App) tryQuit(force bool) error {
	if a.modified() && !force {
		return fmt.Errorf("unsaved changes (use :q! to discard)")
	}
	a.quit = true
	return nil
}

func (a *App) render() {
	s := a.screen
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}
	bodyH := max(h-2, 0)
	body := editor.Rect{X: 0, Y: 0, W: w, H: bodyH}
	cx, cy, ok := a.view.Render(s, body)

	styles := a.view.Styles()
	left, right := a.statusText()
	if bodyH < h {
		view.DrawStatus(s, 0, bodyH, w, left, right, styles.Status)
	}

	if a.prompt.Active() {
		px := a.prompt.Render(s, 0, h-1, w, body)
		s.ShowCursor(px, h-1)
	} else {
		view.DrawStatus(s, 0, h-1, w, a.message, "", styles.Command)
		if ok {
			s.ShowCursor(cx, cy)
		} else {
			s.HideCursor()
		}
	}
	s.Show()
}

func (a *App) statusText() (left, right string) {
	name := a.ed.Path()
	if name == "" {
		name = "[untitled]"
	}
	left = " " + name
	if a.modified() {
		left += " [+]"
	}
	line, col := a.ed.Cursor()
	lang := a.ed.Language()
	if lang == "" {
		lang = "text"
	}
	right = fmt.Sprintf("%s  %d:%d ", lang, line+1, col+1)
	if a.grammar != "" && a.grammar != lang {
		right = a.grammar + "  " + right
	}
	return left, right
}
