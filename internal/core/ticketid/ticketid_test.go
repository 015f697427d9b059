package ticketid

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"SP-25", "SP-25", true},
		{"sp25", "SP-25", true},
		{"SP 25", "SP-25", true},
		{"  sp-25 ", "SP-25", true},
		{"Sp_25", "SP-25", true},
		{"ops-7", "OPS-7", true},
		{"PROJ-0042", "PROJ-0042", true},
		{"sp   25", "SP-25", true},
		{"S-25", "", false},
		{"SP-", "", false},
		{"25", "", false},
		{"SP--25", "", false},
		{"SP-25a", "", false},
		{"NONE", "", false},
		{"", "", false},
		{"S P 25", "", false},
	}
	for _, c := range cases {
		got, ok := Normalize(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("Normalize(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, raw := range []string{"sp 25", "SP-25", "Sp25", "ops_7", "ABC-100"} {
		once, ok := Normalize(raw)
		if !ok {
			t.Fatalf("Normalize(%q) rejected", raw)
		}
		twice, ok := Normalize(Display(once))
		if !ok || twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
	a, _ := Normalize("sp 25")
	b, _ := Normalize("SP-25")
	c, _ := Normalize("Sp25")
	if a != b || b != c {
		t.Fatalf("variants disagree: %q %q %q", a, b, c)
	}
}

func TestHelpers(t *testing.T) {
	if MustNormalize("junk") != None || Display("junk") != None {
		t.Fatalf("invalid ids should render None")
	}
	if !Equal("sp 25", "SP-25") || Equal("SP-25", "SP-26") || Equal("junk", "junk") {
		t.Fatalf("Equal mismatch")
	}
	if !IsLegacy("sp25") || IsLegacy("OPS-1") || IsLegacy("x") {
		t.Fatalf("IsLegacy mismatch")
	}
	if Key("ops-7") != "OPS" || Key("x") != "" {
		t.Fatalf("Key mismatch")
	}
	if !Valid("OPS-1") || Valid("O-1") {
		t.Fatalf("Valid mismatch")
	}
}
