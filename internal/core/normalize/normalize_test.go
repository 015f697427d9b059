package normalize

import (
	"math"
	"testing"
)

func TestName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"Doug", "doug"},
		{"  José   Álvarez ", "jose alvarez"},
		{"JOHN DOE", "john doe"},
		{"Ｍｉｋｅ", "mike"},
		{"O'Brien-Smith", "o'brien-smith"},
		{"Zoë.", "zoe"},
		{"Anna​ Lee", "anna lee"},
	}
	for _, c := range cases {
		if got := Name(c.in); got != c.want {
			t.Fatalf("Name(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"Refactor the login validation.", "refactor the login validation"},
		{"  Fix: DB-schema   updates!! ", "fix db schema updates"},
		{"ＡＰＩ rate‑limits", "api rate limits"},
	}
	for _, c := range cases {
		if got := Text(c.in); got != c.want {
			t.Fatalf("Text(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTokensAndOverlap(t *testing.T) {
	toks := Tokens("Refactor the login validation for the login page")
	want := []string{"refactor", "login", "validation", "page"}
	if len(toks) != len(want) {
		t.Fatalf("Tokens = %v", toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("Tokens = %v, want %v", toks, want)
		}
	}

	if got := Overlap("Refactor login validation", "refactor the Login validation."); got != 1 {
		t.Fatalf("identical token sets overlap = %v", got)
	}
	got := Overlap("refactor login validation", "refactor signup validation")
	if math.Abs(got-2.0/3.0) > 1e-9 {
		t.Fatalf("partial overlap = %v", got)
	}
	if Overlap("", "anything") != 0 {
		t.Fatalf("empty overlap should be 0")
	}
}

func TestCollapseAndFirstName(t *testing.T) {
	if got := Collapse("  mobile\tapp   optimization \n"); got != "mobile app optimization" {
		t.Fatalf("Collapse = %q", got)
	}
	if FirstName("john doe") != "john" || FirstName("doug") != "doug" {
		t.Fatalf("FirstName mismatch")
	}
}
