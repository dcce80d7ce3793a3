package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kobzarvs/qcore/internal/grammar"
)

type LanguageServer struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

type Language struct {
	Name            string   `toml:"name"`
	FileTypes       []string `toml:"file-types"`
	Roots           []string `toml:"roots"`
	LanguageServers []string `toml:"language-servers"`
	// Grammar names the block and keyword descriptor, defaulting to Name.
	Grammar string `toml:"grammar"`
}

func (l Language) GrammarName() string {
	if l.Grammar != "" {
		return l.Grammar
	}
	return l.Name
}

type Languages struct {
	Languages       []Language               `toml:"language"`
	LanguageServers map[string]LanguageServer `toml:"language-server"`
}

func (l Languages) Match(path string) *Language {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	for i := range l.Languages {
		lang := &l.Languages[i]
		for _, ft := range lang.FileTypes {
			ftLower := strings.ToLower(ft)
			if ftLower == ext || ftLower == baseLower {
				return lang
			}
			if strings.HasPrefix(ftLower, ".") && strings.TrimPrefix(ftLower, ".") == ext {
				return lang
			}
		}
	}
	return nil
}

// DefaultLanguages lists the languages qcore recognizes without a languages.toml.
func DefaultLanguages() Languages {
	return Languages{
		Languages: []Language{
			{Name: "go", FileTypes: []string{"go"}, Roots: []string{"go.mod"}, LanguageServers: []string{"gopls"}},
			{Name: "bash", FileTypes: []string{"sh", "bash", ".bashrc", ".profile"}},
			{Name: "yaml", FileTypes: []string{"yaml", "yml"}},
			{Name: "toml", FileTypes: []string{"toml"}},
			{Name: "json", FileTypes: []string{"json"}},
		},
		LanguageServers: map[string]LanguageServer{
			"gopls": {Command: "gopls"},
		},
	}
}

// LoadLanguages reads languages.toml. Entries there replace defaults of the
// same name and servers are merged by key.
func LoadLanguages() (Languages, error) {
	path, err := LanguagesPath()
	if err != nil {
		return Languages{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultLanguages(), nil
		}
		return Languages{}, err
	}

	var user Languages
	if _, err := toml.Decode(string(data), &user); err != nil {
		return Languages{}, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg := DefaultLanguages()
	for _, lang := range user.Languages {
		replaced := false
		for i := range cfg.Languages {
			if cfg.Languages[i].Name == lang.Name {
				cfg.Languages[i] = lang
				replaced = true
				break
			}
		}
		if !replaced {
			cfg.Languages = append(cfg.Languages, lang)
		}
	}
	for name, srv := range user.LanguageServers {
		cfg.LanguageServers[name] = srv
	}
	return cfg, nil
}

func GrammarPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "grammars", name+".toml"), nil
}

// LoadGrammar returns the descriptor text for a grammar: the user's
// grammars/<name>.toml when present, else the builtin of that name.
// The bool is false when neither exists.
func LoadGrammar(name string) (string, bool, error) {
	if name == "" {
		return "", false, nil
	}
	path, err := GrammarPath(name)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err == nil {
		return string(data), true, nil
	}
	if !os.IsNotExist(err) {
		return "", false, err
	}
	if d := grammar.Builtin(name); d != "" {
		return d, true, nil
	}
	return "", false, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
