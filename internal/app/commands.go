package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kobzarvs/qcore/internal/atomicwrite"
	"github.com/kobzarvs/qcore/internal/config"
	"github.com/kobzarvs/qcore/internal/logger"
	"github.com/kobzarvs/qcore/internal/session"
)

var errNoFileName = errors.New("no file name")

// commandNames are offered as completions in the prompt.
func commandNames() []string {
	return []string{"write", "quit", "wq", "goto", "grammar"}
}

// runCommand executes one prompt line: ":w [path]", ":q", ":q!", ":wq",
// ":goto <line[:col]>" (a bare number also jumps) and ":grammar <name>".
func (a *App) runCommand(line string) error {
	line = strings.TrimPrefix(strings.TrimSpace(line), ":")
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "w", "write":
		return a.save(arg)
	case "q", "quit":
		return a.tryQuit(false)
	case "q!", "quit!":
		return a.tryQuit(true)
	case "wq", "x":
		if err := a.save(arg); err != nil {
			return err
		}
		return a.tryQuit(false)
	case "goto", "g":
		return a.gotoPosition(arg)
	case "grammar":
		if arg == "" {
			return fmt.Errorf("grammar: name required")
		}
		if err := a.applyGrammar(arg); err != nil {
			return err
		}
		a.message = "grammar " + arg
		return nil
	}
	if _, err := strconv.Atoi(strings.SplitN(name, ":", 2)[0]); err == nil {
		return a.gotoPosition(name)
	}
	return fmt.Errorf("unknown command: %s", name)
}

// parsePosition reads "line" or "line:col", one-based, into zero-based
// line and column.
func parsePosition(s string) (line, col int, err error) {
	ls, cs, hasCol := strings.Cut(s, ":")
	line, err = strconv.Atoi(ls)
	if err != nil {
		return 0, 0, fmt.Errorf("goto: bad line %q", ls)
	}
	if hasCol {
		col, err = strconv.Atoi(cs)
		if err != nil {
			return 0, 0, fmt.Errorf("goto: bad column %q", cs)
		}
	}
	return max(line-1, 0), max(col-1, 0), nil
}

func (a *App) gotoPosition(arg string) error {
	line, col, err := parsePosition(arg)
	if err != nil {
		return err
	}
	a.ed.GotoLineCol(line, col)
	return nil
}

// open loads path into the editor. A missing file starts an empty document
// that is created on save.
func (a *App) open(path string) error {
	content := ""
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		content = string(data)
	}

	a.lang = nil
	if path != "" {
		a.lang = a.langs.Match(path)
	}
	langName := ""
	if a.lang != nil {
		langName = a.lang.Name
	}
	a.ed.SetLanguage(langName)
	a.ed.SetPath(path)
	a.ed.Load(content)
	a.saved, a.savedText = a.ed.Version(), a.ed.Content()
	a.grammar = ""

	a.tsLanguage = ""
	if langName != "" && a.ts.Supports(langName) && len(content) <= maxHighlightBytes {
		a.tsLanguage = langName
	}

	grammarName := ""
	if a.lang != nil {
		grammarName = a.lang.GrammarName()
	}
	if st, ok := a.sess.FileState(a.ed.URI()); ok && path != "" {
		if st.Grammar != "" {
			grammarName = st.Grammar
		}
		a.ed.SetSelection(st.Anchor, st.Head)
		a.view.SetScroll(st.ScrollY, st.ScrollX)
	}
	if grammarName != "" {
		if err := a.applyGrammar(grammarName); err != nil {
			logger.Warn("app: grammar not loaded", "grammar", grammarName, "error", err)
		}
	}

	if path != "" {
		a.ls.OpenFile(path, a.ed.Version(), content)
	}
	logger.Info("app: opened", "path", path, "language", langName, "bytes", len(content))
	return nil
}

func (a *App) applyGrammar(name string) error {
	d, ok, err := config.LoadGrammar(name)
	if err != nil {
		return fmt.Errorf("grammar %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("grammar %s: not found", name)
	}
	a.ed.SetGrammar(d)
	a.grammar = name
	return nil
}

// save writes the document to path, or to its own path when path is empty.
func (a *App) save(path string) error {
	if path == "" {
		path = a.ed.Path()
	}
	if path == "" {
		return errNoFileName
	}
	content := a.ed.Content()
	if err := atomicwrite.File(path, []byte(content), 0o644); err != nil {
		return err
	}
	if old := a.ed.Path(); path != old {
		if old != "" {
			a.ls.CloseFile(old)
		}
		a.ts.Forget(a.ed.URI())
		a.ed.SetPath(path)
		a.ls.OpenFile(path, a.ed.Version(), content)
		// Highlights are keyed by URI; resend under the new one.
		a.synced = -1
	}
	a.saved, a.savedText = a.ed.Version(), content
	a.message = fmt.Sprintf("%q %dL, %dB written", path, strings.Count(content, "\n"), len(content))
	logger.Info("app: saved", "path", path, "bytes", len(content))
	return nil
}

func (a *App) rememberFile() {
	sy, sx := a.view.Scroll()
	a.sess.SetFileState(a.ed.URI(), session.FileState{
		Anchor:  a.ed.Anchor(),
		Head:    a.ed.Head(),
		ScrollY: sy,
		ScrollX: sx,
		Grammar: a.grammar,
	})
}

// reload applies an edited config file.
func (a *App) reload(ch config.Change) {
	logger.Info("app: config changed", "kind", ch.Kind, "name", ch.Name)
	switch ch.Kind {
	case "config", "theme":
		cfg, err := config.Load()
		if err != nil {
			a.report(err)
			return
		}
		a.cfg = cfg
		a.view.SetConfig(cfg)
		a.prompt.SetConfig(cfg)
	case "languages":
		langs, err := config.LoadLanguages()
		if err != nil {
			a.report(err)
			return
		}
		a.langs = langs
		a.ls.SetLanguages(langs)
		if path := a.ed.Path(); path != "" {
			if lang := langs.Match(path); lang != nil {
				a.lang = lang
				a.report(a.applyGrammar(lang.GrammarName()))
			}
		}
	case "grammar":
		if ch.Name == a.grammar {
			a.report(a.applyGrammar(ch.Name))
		}
	}
}
