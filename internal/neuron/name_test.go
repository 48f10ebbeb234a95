package neuron

import "testing"

func TestParseName(t *testing.T) {
	typ, nick, tracer, generic := ParseName("AD1b2#7 3080184 Dust World JJ PS")

	if typ != "AD1b2#7" {
		t.Errorf("type: got %q", typ)
	}
	if nick != "Dust World" {
		t.Errorf("nickname: got %q", nick)
	}
	if tracer != "JJ PS" {
		t.Errorf("tracer: got %q", tracer)
	}
	if generic != "3080184" {
		t.Errorf("generic: got %q", generic)
	}
}

func TestParseName_NeuronWord(t *testing.T) {
	// "neuron" followed by a number is generic, not type information.
	_, _, _, generic := ParseName("neuron 12345")
	if generic != "neuron 12345" {
		t.Errorf("expected both words generic, got generic=%q", generic)
	}

	typ, _, _, _ := ParseName("neuron fancy")
	if typ != "neuron fancy" {
		t.Errorf("expected both words type, got type=%q", typ)
	}
}

func TestShortenName(t *testing.T) {
	name := "AD1b2#7 3080184 Dust World JJ PS"

	// Generic information goes first.
	if got := ShortenName(name, 30); got != "AD1b2#7 [..] Dust World JJ PS" {
		t.Errorf("maxLen 30: got %q", got)
	}
	// Then tracer initials and nickname words.
	if got := ShortenName(name, 20); got != "AD1b2#7 [..]" {
		t.Errorf("maxLen 20: got %q", got)
	}
	// Already short names are untouched.
	if got := ShortenName("PN x", 30); got != "PN x" {
		t.Errorf("short name changed: got %q", got)
	}
}
