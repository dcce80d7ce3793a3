package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Keymap maps key strings such as "shift+left" or "ctrl+z" to editor
// actions, separately for the main editor and the command prompt.
type Keymap struct {
	Editor map[string]string `toml:"editor"`
	Prompt map[string]string `toml:"prompt"`
}

type EditorOptions struct {
	TabWidth           int    `toml:"tab-width"`
	LineNumbers        string `toml:"line-numbers"`
	UndoLimit          int    `toml:"undo-limit"`
	CompletionMaxItems int    `toml:"completion-max-items"`
	ShowDepth          bool   `toml:"show-depth"`
}

type Theme struct {
	Theme                      string `toml:"theme"`
	Foreground                 string `toml:"foreground"`
	Background                 string `toml:"background"`
	StatuslineForeground       string `toml:"statusline-foreground"`
	StatuslineBackground       string `toml:"statusline-background"`
	CommandlineForeground      string `toml:"commandline-foreground"`
	CommandlineBackground      string `toml:"commandline-background"`
	LineNumberForeground       string `toml:"line-number-foreground"`
	LineNumberActiveForeground string `toml:"line-number-active-foreground"`
	SelectionForeground        string `toml:"selection-foreground"`
	SelectionBackground        string `toml:"selection-background"`
	MarkedForeground           string `toml:"marked-foreground"`
	DepthGuideForeground       string `toml:"depth-guide-foreground"`
	ScopeEndBackground         string `toml:"scope-end-background"`
	CompletionForeground       string `toml:"completion-foreground"`
	CompletionBackground       string `toml:"completion-background"`
	CompletionSelected         string `toml:"completion-selected"`
	CompletionDetail           string `toml:"completion-detail"`
	SyntaxKeyword              string `toml:"syntax-keyword"`
	SyntaxString               string `toml:"syntax-string"`
	SyntaxComment              string `toml:"syntax-comment"`
	SyntaxType                 string `toml:"syntax-type"`
	SyntaxFunction             string `toml:"syntax-function"`
	SyntaxNumber               string `toml:"syntax-number"`
	SyntaxConstant             string `toml:"syntax-constant"`
	SyntaxOperator             string `toml:"syntax-operator"`
	SyntaxPunctuation          string `toml:"syntax-punctuation"`
	SyntaxField                string `toml:"syntax-field"`
	SyntaxBuiltin              string `toml:"syntax-builtin"`
	SyntaxVariable             string `toml:"syntax-variable"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
	Keymap Keymap        `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TabWidth:           4,
			LineNumbers:        "absolute",
			UndoLimit:          1000,
			CompletionMaxItems: 10,
		},
		Theme: Theme{
			Foreground:                 "#B3B1AD",
			Background:                 "#0A0E14",
			StatuslineForeground:       "#B3B1AD",
			StatuslineBackground:       "#0F1419",
			CommandlineForeground:      "#B3B1AD",
			CommandlineBackground:      "#0F1419",
			LineNumberForeground:       "#3E4B59",
			LineNumberActiveForeground: "#B3B1AD",
			SelectionForeground:        "#B3B1AD",
			SelectionBackground:        "#27425A",
			MarkedForeground:           "#E6B450",
			DepthGuideForeground:       "#1F2630",
			ScopeEndBackground:         "#1B2733",
			CompletionForeground:       "#B3B1AD",
			CompletionBackground:       "#14191F",
			CompletionSelected:         "#27425A",
			CompletionDetail:           "#5C6773",
			SyntaxKeyword:              "#FFA759",
			SyntaxString:               "#BAE67E",
			SyntaxComment:              "#5C6773",
			SyntaxType:                 "#5CCFE6",
			SyntaxFunction:             "#FFD173",
			SyntaxNumber:               "#D4BFFF",
			SyntaxConstant:             "#FFDD8E",
			SyntaxOperator:             "#F29668",
			SyntaxPunctuation:          "#C0C0C0",
			SyntaxField:                "#E6B673",
			SyntaxBuiltin:              "#73D0FF",
			SyntaxVariable:             "#B3B1AD",
		},
		Keymap: Keymap{
			Editor: map[string]string{
				"left":             "move_left",
				"right":            "move_right",
				"up":               "move_up",
				"down":             "move_down",
				"shift+left":       "select_left",
				"shift+right":      "select_right",
				"shift+up":         "select_up",
				"shift+down":       "select_down",
				"ctrl+left":        "word_left",
				"ctrl+right":       "word_right",
				"alt+left":         "word_left",
				"alt+right":        "word_right",
				"ctrl+shift+left":  "select_word_left",
				"ctrl+shift+right": "select_word_right",
				"home":             "line_start",
				"end":              "line_end",
				"shift+home":       "select_line_start",
				"shift+end":        "select_line_end",
				"ctrl+home":        "file_start",
				"ctrl+end":         "file_end",
				"ctrl+shift+home":  "select_file_start",
				"ctrl+shift+end":   "select_file_end",
				"ctrl+a":           "select_all",
				"backspace":        "backspace",
				"del":              "delete_char",
				"enter":            "newline",
				"tab":              "indent",
				"ctrl+z":           "undo",
				"ctrl+y":           "redo",
				"ctrl+c":           "copy",
				"ctrl+x":           "cut",
				"ctrl+v":           "paste",
				"ctrl+space":       "complete",
				"esc":              "completion_cancel",
				"ctrl+s":           "save",
				"ctrl+q":           "quit",
				"ctrl+p":           "prompt",
				"pgup":             "page_up",
				"pgdn":             "page_down",
			},
			Prompt: map[string]string{
				"left":        "move_left",
				"right":       "move_right",
				"shift+left":  "select_left",
				"shift+right": "select_right",
				"ctrl+left":   "word_left",
				"ctrl+right":  "word_right",
				"home":        "line_start",
				"end":         "line_end",
				"ctrl+a":      "select_all",
				"backspace":   "backspace",
				"del":         "delete_char",
				"ctrl+z":      "undo",
				"ctrl+y":      "redo",
				"ctrl+c":      "copy",
				"ctrl+x":      "cut",
				"ctrl+v":      "paste",
				"up":          "history_prev",
				"down":        "history_next",
				"tab":         "complete",
				"enter":       "submit",
				"esc":         "cancel",
			},
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}

	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.LineNumbers != "" {
		cfg.Editor.LineNumbers = userCfg.Editor.LineNumbers
	}
	if userCfg.Editor.UndoLimit > 0 {
		cfg.Editor.UndoLimit = userCfg.Editor.UndoLimit
	}
	if userCfg.Editor.CompletionMaxItems > 0 {
		cfg.Editor.CompletionMaxItems = userCfg.Editor.CompletionMaxItems
	}
	if userCfg.Editor.ShowDepth {
		cfg.Editor.ShowDepth = true
	}
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	for k, v := range userCfg.Keymap.Editor {
		cfg.Keymap.Editor[k] = v
	}
	for k, v := range userCfg.Keymap.Prompt {
		cfg.Keymap.Prompt[k] = v
	}

	return cfg, nil
}

// mergeTheme copies every color set in src over dst.
func mergeTheme(dst *Theme, src Theme) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Foreground, src.Foreground)
	set(&dst.Background, src.Background)
	set(&dst.StatuslineForeground, src.StatuslineForeground)
	set(&dst.StatuslineBackground, src.StatuslineBackground)
	set(&dst.CommandlineForeground, src.CommandlineForeground)
	set(&dst.CommandlineBackground, src.CommandlineBackground)
	set(&dst.LineNumberForeground, src.LineNumberForeground)
	set(&dst.LineNumberActiveForeground, src.LineNumberActiveForeground)
	set(&dst.SelectionForeground, src.SelectionForeground)
	set(&dst.SelectionBackground, src.SelectionBackground)
	set(&dst.MarkedForeground, src.MarkedForeground)
	set(&dst.DepthGuideForeground, src.DepthGuideForeground)
	set(&dst.ScopeEndBackground, src.ScopeEndBackground)
	set(&dst.CompletionForeground, src.CompletionForeground)
	set(&dst.CompletionBackground, src.CompletionBackground)
	set(&dst.CompletionSelected, src.CompletionSelected)
	set(&dst.CompletionDetail, src.CompletionDetail)
	set(&dst.SyntaxKeyword, src.SyntaxKeyword)
	set(&dst.SyntaxString, src.SyntaxString)
	set(&dst.SyntaxComment, src.SyntaxComment)
	set(&dst.SyntaxType, src.SyntaxType)
	set(&dst.SyntaxFunction, src.SyntaxFunction)
	set(&dst.SyntaxNumber, src.SyntaxNumber)
	set(&dst.SyntaxConstant, src.SyntaxConstant)
	set(&dst.SyntaxOperator, src.SyntaxOperator)
	set(&dst.SyntaxPunctuation, src.SyntaxPunctuation)
	set(&dst.SyntaxField, src.SyntaxField)
	set(&dst.SyntaxBuiltin, src.SyntaxBuiltin)
	set(&dst.SyntaxVariable, src.SyntaxVariable)
}

// SyntaxColors maps tokenizer style names to theme colors.
func (t Theme) SyntaxColors() map[string]string {
	return map[string]string{
		"keyword":     t.SyntaxKeyword,
		"string":      t.SyntaxString,
		"comment":     t.SyntaxComment,
		"type":        t.SyntaxType,
		"function":    t.SyntaxFunction,
		"number":      t.SyntaxNumber,
		"constant":    t.SyntaxConstant,
		"operator":    t.SyntaxOperator,
		"punctuation": t.SyntaxPunctuation,
		"field":       t.SyntaxField,
		"builtin":     t.SyntaxBuiltin,
		"variable":    t.SyntaxVariable,
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

// LoadTheme reads theme/<name>.toml. Colors may sit at the top level or
// under a [theme] table.
func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var wrap struct {
		Theme
		Wrapped Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, fmt.Errorf("config: theme %s: %w", name, err)
	}
	t := wrap.Theme
	mergeTheme(&t, wrap.Wrapped)
	return t, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QCORE_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qcore"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qcore"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
