// Package normalize folds names and task descriptions into comparison keys.
//
// Name keys: NFKD, combining marks dropped, case folded, width folded, punctuation
// other than hyphen and apostrophe dropped, whitespace collapsed. "José  Álvarez" and
// "jose alvarez" share a key.
//
// Text keys: NFKC, case folded, format characters dropped, every non letter/digit
// run collapsed to one space. Used for duplicate detection between descriptions.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// transformer chains are stateful, so each call borrows one from a pool
var (
	namePool = sync.Pool{New: func() any {
		return transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)),
			cases.Fold(),
			width.Fold,
			norm.NFC,
		)
	}}
	textPool = sync.Pool{New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	}}
)

func apply(p *sync.Pool, s string) string {
	tr := p.Get().(transform.Transformer)
	out, _, err := transform.String(tr, strings.ToValidUTF8(s, ""))
	tr.Reset()
	p.Put(tr)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Name returns the comparison key for a person's name
func Name(s string) string {
	if s == "" {
		return ""
	}
	folded := apply(&namePool, s)
	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// Text returns the comparison key for free text
func Text(s string) string {
	if s == "" {
		return ""
	}
	folded := apply(&textPool, s)
	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Collapse trims s and folds internal whitespace runs to one space, keeping case
func Collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

// FirstName returns the first word of a name key
func FirstName(key string) string {
	first, _, _ := strings.Cut(key, " ")
	return first
}
