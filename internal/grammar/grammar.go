// Package grammar parses grammar descriptors: small TOML documents naming
// the block pairs used by the depth scanner and the keywords offered by
// completion.
//
//	name = "go"
//	keywords = ["func", "return"]
//
//	[[block]]
//	start = "{"
//	end = "}"
package grammar

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Pair is a block pair: a line starting with Start opens a block that a
// line starting with End closes. Punctuation starts such as "{" also open
// a block at the end of a line.
type Pair struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

type Grammar struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
	Blocks   []Pair   `toml:"block"`
}

// Parse decodes a descriptor. Pairs with an empty token are dropped since
// they would match every line.
func Parse(descriptor string) (Grammar, error) {
	var g Grammar
	if strings.TrimSpace(descriptor) == "" {
		return g, nil
	}
	if _, err := toml.Decode(descriptor, &g); err != nil {
		return Grammar{}, fmt.Errorf("grammar: %w", err)
	}
	pairs := g.Blocks[:0]
	for _, p := range g.Blocks {
		if strings.TrimSpace(p.Start) == "" || strings.TrimSpace(p.End) == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	g.Blocks = pairs
	return g, nil
}

// Cache re-parses a descriptor only when its text changes. A malformed
// descriptor yields an empty grammar, never an error on the editing path.
type Cache struct {
	loaded  bool
	key     string
	grammar Grammar
	err     error
}

// Load returns the grammar for descriptor and whether it was re-parsed.
func (c *Cache) Load(descriptor string) (Grammar, bool) {
	if c.loaded && c.key == descriptor {
		return c.grammar, false
	}
	g, err := Parse(descriptor)
	if err != nil {
		g = Grammar{}
	}
	c.loaded = true
	c.key = descriptor
	c.grammar = g
	c.err = err
	return g, true
}

// Err returns the parse error of the cached descriptor, if any.
func (c *Cache) Err() error { return c.err }

// Grammar returns the cached grammar.
func (c *Cache) Grammar() Grammar { return c.grammar }
