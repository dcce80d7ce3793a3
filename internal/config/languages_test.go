package config

import (
	"path/filepath"
	"testing"

	"github.com/kobzarvs/qcore/internal/grammar"
)

func TestLanguagesMatch(t *testing.T) {
	cfg := Languages{
		Languages: []Language{
			{Name: "go", FileTypes: []string{"go", "go.mod", ".go"}},
			{Name: "git", FileTypes: []string{".gitignore", "Makefile"}},
		},
	}

	if got := cfg.Match("main.go"); got == nil || got.Name != "go" {
		t.Fatalf("Match main.go = %#v, want go", got)
	}
	if got := cfg.Match("go.mod"); got == nil || got.Name != "go" {
		t.Fatalf("Match go.mod = %#v, want go", got)
	}
	if got := cfg.Match(".gitignore"); got == nil || got.Name != "git" {
		t.Fatalf("Match .gitignore = %#v, want git", got)
	}
	if got := cfg.Match("Makefile"); got == nil || got.Name != "git" {
		t.Fatalf("Match Makefile = %#v, want git", got)
	}
	if got := cfg.Match("unknown.txt"); got != nil {
		t.Fatalf("Match unknown.txt = %#v, want nil", got)
	}
}

func TestLoadLanguages(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QCORE_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "languages.toml"), `
[[language]]
name = "go"
file-types = ["go"]
language-servers = ["gopls"]

[[language]]
name = "zig"
file-types = ["zig"]
grammar = "c-like"

[language-server.gopls]
command = "gopls"
args = ["-remote=auto"]
`)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if got := cfg.Match("main.zig"); got == nil || got.GrammarName() != "c-like" {
		t.Fatalf("Match main.zig = %#v, want grammar c-like", got)
	}
	if got := cfg.Match("main.go"); got == nil || got.GrammarName() != "go" {
		t.Fatalf("Match main.go = %#v, want grammar go", got)
	}
	if got := cfg.Match("values.yaml"); got == nil || got.Name != "yaml" {
		t.Fatalf("default yaml entry lost: %#v", got)
	}
	if cfg.LanguageServers == nil {
		t.Fatalf("LanguageServers is nil")
	}
	server, ok := cfg.LanguageServers["gopls"]
	if !ok {
		t.Fatalf("LanguageServers missing gopls")
	}
	if server.Command != "gopls" || len(server.Args) != 1 {
		t.Fatalf("gopls = %+v, want command with one arg", server)
	}
}

func TestLoadLanguagesMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QCORE_CONFIG_HOME", dir)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if len(cfg.Languages) != len(DefaultLanguages().Languages) {
		t.Fatalf("Languages len = %d, want defaults", len(cfg.Languages))
	}
}

func TestLoadGrammar(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QCORE_CONFIG_HOME", dir)

	desc, ok, err := LoadGrammar("go")
	if err != nil || !ok || desc != grammar.Builtin("go") {
		t.Fatalf("LoadGrammar(go) = %v, %v; want builtin", ok, err)
	}

	writeFile(t, filepath.Join(dir, "grammars", "go.toml"), "name = \"mine\"\n")
	desc, ok, err = LoadGrammar("go")
	if err != nil || !ok || desc != "name = \"mine\"\n" {
		t.Fatalf("LoadGrammar(go) = %q, %v, %v; want user file", desc, ok, err)
	}

	if _, ok, err := LoadGrammar("cobol"); ok || err != nil {
		t.Fatalf("LoadGrammar(cobol) = %v, %v; want not found", ok, err)
	}
	if _, ok, _ := LoadGrammar(""); ok {
		t.Fatalf("LoadGrammar(\"\") reported ok")
	}
}
