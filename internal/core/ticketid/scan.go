package ticketid

import (
	"regexp"
	"slices"
	"strings"
)

// Ref is a ticket reference found in free text
type Ref struct {
	ID    string // normalized
	Raw   string // as written
	Start int    // byte offset into the scanned text
	End   int
}

// Scanner finds ticket references in free text.
//
// Generic keys must be written hyphenated or glued to the number ("OPS-7", "ops7").
// Only the legacy key tolerates a space ("SP 25"), so prose like "in 2 days" or
// "top 10" is never read as a ticket
type Scanner struct {
	keys map[string]struct{}
}

var (
	scanGeneric = regexp.MustCompile(`(?i)\b([a-z]{2,10})[-_]?([0-9]{1,6})\b`)
	scanLegacy  = regexp.MustCompile(`(?i)\bsp\s+([0-9]{1,6})\b`)
)

// NewScanner returns a Scanner. When keys is non-empty only those project keys
// (plus the legacy key) are accepted
func NewScanner(keys ...string) *Scanner {
	s := &Scanner{}
	if len(keys) > 0 {
		s.keys = map[string]struct{}{LegacyKey: {}}
		for _, k := range keys {
			if k = strings.ToUpper(strings.TrimSpace(k)); k != "" {
				s.keys[k] = struct{}{}
			}
		}
	}
	return s
}

// Keys returns the accepted project keys, sorted; nil means any key
func (s *Scanner) Keys() []string {
	if s == nil || s.keys == nil {
		return nil
	}
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Accepts reports whether a normalized id has an accepted key
func (s *Scanner) Accepts(id string) bool {
	k := Key(id)
	if k == "" {
		return false
	}
	if s == nil || s.keys == nil {
		return true
	}
	_, ok := s.keys[k]
	return ok
}

// known reports whether k is the legacy key or one of the configured keys
func (s *Scanner) known(k string) bool {
	if k == LegacyKey {
		return true
	}
	if s == nil || s.keys == nil {
		return false
	}
	_, ok := s.keys[k]
	return ok
}

// notTickets are letter-digit words common in engineering speech
var notTickets = map[string]struct{}{
	"UTF": {}, "ISO": {}, "RFC": {}, "SHA": {}, "MD": {}, "HTTP": {}, "IPV": {},
	"TLS": {}, "SSL": {}, "COVID": {}, "ES": {}, "PY": {}, "MP": {}, "FY": {},
}

// Find returns every reference in text in order of appearance, first mention per id
func (s *Scanner) Find(text string) []Ref {
	if text == "" {
		return nil
	}
	spans := append(scanGeneric.FindAllStringIndex(text, -1), scanLegacy.FindAllStringIndex(text, -1)...)
	slices.SortFunc(spans, func(a, b []int) int { return a[0] - b[0] })

	var refs []Ref
	seen := map[string]bool{}
	for _, m := range spans {
		raw := text[m[0]:m[1]]
		id, ok := Normalize(raw)
		if !ok || !s.Accepts(id) || seen[id] {
			continue
		}
		if s == nil || s.keys == nil {
			if _, deny := notTickets[Key(id)]; deny {
				continue
			}
		}
		// a word glued to digits is only a ticket when upper case or the key is known
		if !strings.ContainsAny(raw, "-_ ") && raw != strings.ToUpper(raw) && !s.known(Key(id)) {
			continue
		}
		seen[id] = true
		refs = append(refs, Ref{ID: id, Raw: raw, Start: m[0], End: m[1]})
	}
	return refs
}

// First returns the first reference in text
func (s *Scanner) First(text string) (Ref, bool) {
	refs := s.Find(text)
	if len(refs) == 0 {
		return Ref{}, false
	}
	return refs[0], true
}
