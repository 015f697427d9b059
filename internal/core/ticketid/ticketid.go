// Package ticketid normalizes ticket references to KEY-NNN and finds them in free text.
//
// Two families are accepted: legacy internal ids (SP-25) and tracker ids made of a
// project key of two or more letters (OPS-7). Input is case and spacing insensitive;
// "sp25", "SP 25", "sp-25" and "Sp_25" all normalize to "SP-25".
package ticketid

import (
	"regexp"
	"strings"
)

// None is the sentinel for "no ticket referenced"
const None = "NONE"

// LegacyKey is the project key of internal ids
const LegacyKey = "SP"

var exact = regexp.MustCompile(`^([A-Z]{2,})[-_ ]?([0-9]+)$`)

// Normalize returns the canonical KEY-NNN form of raw, or false when raw is not a ticket id.
// Leading zeros in the number are kept since trackers treat "OPS-007" and "OPS-7" as distinct
func Normalize(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || s == None {
		return "", false
	}
	// spaces may separate key and number ("SP 25") but nothing else
	s = strings.Join(strings.Fields(s), " ")
	m := exact.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1] + "-" + m[2], true
}

// MustNormalize is Normalize returning None for invalid input
func MustNormalize(raw string) string {
	if id, ok := Normalize(raw); ok {
		return id
	}
	return None
}

// Display renders a normalized id. Invalid ids render as None
func Display(id string) string { return MustNormalize(id) }

// Valid reports whether raw normalizes
func Valid(raw string) bool {
	_, ok := Normalize(raw)
	return ok
}

// Equal compares two raw references by their normalized form. Invalid never equals anything
func Equal(a, b string) bool {
	na, okA := Normalize(a)
	nb, okB := Normalize(b)
	return okA && okB && na == nb
}

// IsLegacy reports whether id uses internal SP numbering
func IsLegacy(id string) bool {
	n, ok := Normalize(id)
	return ok && strings.HasPrefix(n, LegacyKey+"-")
}

// Key returns the project key of id, or "" when id is invalid
func Key(id string) string {
	n, ok := Normalize(id)
	if !ok {
		return ""
	}
	k, _, _ := strings.Cut(n, "-")
	return k
}
