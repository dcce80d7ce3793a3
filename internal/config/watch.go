package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kobzarvs/qcore/internal/logger"
)

// Change reports which part of the config directory was touched.
type Change struct {
	// Kind is "config", "languages", "theme" or "grammar".
	Kind string
	// Name is the theme or grammar name for those kinds.
	Name string
	Path string
}

// settle coalesces the bursts of events editors produce on save.
const settle = 50 * time.Millisecond

// Watch reports edits to config.toml, languages.toml, themes and grammars
// until ctx is done. Missing subdirectories are created so they can be
// watched.
func Watch(ctx context.Context) (<-chan Change, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range []string{dir, filepath.Join(dir, "theme"), filepath.Join(dir, "grammars")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			w.Close()
			return nil, err
		}
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, err
		}
	}

	out := make(chan Change, 8)
	go func() {
		defer close(out)
		defer w.Close()
		pending := map[string]Change{}
		timer := time.NewTimer(settle)
		timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if c, ok := classify(dir, ev.Name); ok {
					pending[c.Path] = c
					timer.Reset(settle)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("config: watch error", "error", err)
			case <-timer.C:
				for path, c := range pending {
					select {
					case out <- c:
					case <-ctx.Done():
						return
					}
					delete(pending, path)
				}
			}
		}
	}()
	return out, nil
}

func classify(dir, path string) (Change, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || filepath.Ext(rel) != ".toml" {
		return Change{}, false
	}
	name := strings.TrimSuffix(filepath.Base(rel), ".toml")
	switch filepath.Dir(rel) {
	case ".":
		if name == "config" || name == "languages" {
			return Change{Kind: name, Path: path}, true
		}
	case "theme":
		return Change{Kind: "theme", Name: name, Path: path}, true
	case "grammars":
		return Change{Kind: "grammar", Name: name, Path: path}, true
	}
	return Change{}, false
}
