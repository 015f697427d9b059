package assignee

import (
	"strings"

	"tasksync/internal/core/normalize"
)

// Canonicalizer collapses spelling variants of one person onto a canonical name.
// A nil *Canonicalizer folds names without remapping
type Canonicalizer struct {
	byKey map[string]string
}

// NewCanonicalizer builds a canonicalizer from canonical name to its variants.
// The canonical name is always a variant of itself
func NewCanonicalizer(variants map[string][]string) *Canonicalizer {
	c := &Canonicalizer{byKey: make(map[string]string, len(variants)*2)}
	for canonical, vs := range variants {
		canonical = normalize.Collapse(canonical)
		if canonical == "" {
			continue
		}
		c.byKey[normalize.Name(canonical)] = canonical
		for _, v := range vs {
			if k := normalize.Name(v); k != "" {
				c.byKey[k] = canonical
			}
		}
	}
	return c
}

// Canonical returns the canonical spelling of name, or name trimmed when unknown
func (c *Canonicalizer) Canonical(name string) string {
	name = normalize.Collapse(name)
	if c == nil {
		return name
	}
	if v, ok := c.byKey[normalize.Name(name)]; ok {
		return v
	}
	return name
}

// Key is the comparison key of the canonical form of name
func (c *Canonicalizer) Key(name string) string {
	return normalize.Name(c.Canonical(name))
}

// Lookup reports the canonical name for an exact variant key
func (c *Canonicalizer) Lookup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.byKey[normalize.Name(name)]
	return v, ok
}

// Len is the number of known variant keys
func (c *Canonicalizer) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byKey)
}

// Mentions returns canonical names whose variants appear as whole words in text,
// longest variants first so "Jon Smith" wins over "Jon"
func (c *Canonicalizer) Mentions(text string) []string {
	if c.Len() == 0 {
		return nil
	}
	words := strings.Fields(normalize.Name(text))
	var out []string
	seen := map[string]bool{}
	for n := 3; n >= 1; n-- {
		for i := 0; i+n <= len(words); i++ {
			if v, ok := c.byKey[strings.Join(words[i:i+n], " ")]; ok && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
