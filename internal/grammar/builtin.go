package grammar

// Builtin returns the bundled descriptor for a language name, or "" when
// there is none.
func Builtin(name string) string {
	return builtin[name]
}

// BuiltinNames lists the languages with a bundled descriptor.
func BuiltinNames() []string {
	return []string{"go", "bash", "json", "toml", "yaml"}
}

var builtin = map[string]string{
	"go": `
name = "go"
keywords = [
  "break", "case", "chan", "const", "continue", "default", "defer", "else",
  "fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
  "map", "package", "range", "return", "select", "struct", "switch", "type", "var",
  "append", "cap", "close", "copy", "delete", "len", "make", "new", "panic", "recover",
  "bool", "byte", "error", "float64", "int", "int64", "rune", "string", "uint", "any",
  "true", "false", "nil", "iota",
]

[[block]]
start = "{"
end = "}"

[[block]]
start = "("
end = ")"

[[block]]
start = "["
end = "]"
`,
	"bash": `
name = "bash"
keywords = [
  "if", "then", "else", "elif", "fi", "case", "esac", "for", "while", "until",
  "do", "done", "in", "function", "select", "return", "exit", "break", "continue",
  "local", "export", "readonly", "declare", "unset", "echo", "printf",
]

[[block]]
start = "if"
end = "fi"

[[block]]
start = "for"
end = "done"

[[block]]
start = "while"
end = "done"

[[block]]
start = "until"
end = "done"

[[block]]
start = "case"
end = "esac"

[[block]]
start = "{"
end = "}"
`,
	"json": `
name = "json"
keywords = ["true", "false", "null"]

[[block]]
start = "{"
end = "}"

[[block]]
start = "["
end = "]"
`,
	"toml": `
name = "toml"
keywords = ["true", "false"]
`,
	"yaml": `
name = "yaml"
keywords = ["true", "false", "null"]
`,
}
