package strings

import (
	"testing"

	kit "tasksync/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	if got := IfEmpty(nil, []string{"GET"}); len(got) != 1 || got[0] != "GET" {
		t.Fatalf("IfEmpty(nil) = %v", got)
	}
	if got := IfEmpty([]int{1, 2}, []int{9}); len(got) != 2 {
		t.Fatalf("IfEmpty(non-empty) = %v", got)
	}
}

func TestFirstNonBlank(t *testing.T) {
	if got := FirstNonBlank("", "  ", "Doug", "John"); got != "Doug" {
		t.Fatalf("FirstNonBlank = %q", got)
	}
	if got := FirstNonBlank(" "); got != "" {
		t.Fatalf("FirstNonBlank(all blank) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"refactor login", 40, "refactor login"},
		{"refactor login", 9, "refactor…"},
		{"añadir", 3, "añ…"},
		{"abc", 1, "a"},
		{"abc", 0, ""},
	}
	for _, c := range cases {
		if got := Truncate(c.in, c.n); got != c.want {
			t.Fatalf("Truncate(%q,%d) = %q, want %q", c.in, c.n, got, c.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"Doug", " john ", "doug", "", "John", "Mike"})
	want := []string{"Doug", "john", "Mike"}
	if len(got) != len(want) {
		t.Fatalf("Dedupe = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Dedupe[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMustPrefix(t *testing.T) {
	if got := MustPrefix(" runs/ "); got != "/runs" {
		t.Fatalf("MustPrefix = %q", got)
	}
	kit.MustPanic(t, func() { MustPrefix(" / ") })
}

func TestSQLNullAndDeref(t *testing.T) {
	if SQLNull("  ") != nil || SQLNull("SP-1") != "SP-1" {
		t.Fatalf("SQLNull mismatch")
	}
	s := "x"
	if Deref(nil) != "" || Deref(&s) != "x" {
		t.Fatalf("Deref mismatch")
	}
}
