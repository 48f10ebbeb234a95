package neuron

import (
	"strings"
	"unicode"
)

// Word sentiments used by the name parsing heuristic. Names are expected to
// roughly follow "{type} {generic} {nickname} {tracer initials}"; anything
// else is classified best-effort.
const (
	sentType     = "type"
	sentGeneric  = "generic"
	sentNickname = "nickname"
	sentTracer   = "tracer"
)

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isUpperAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// guessSentiment classifies each word of a neuron name as type, nickname,
// tracer or generic.
func guessSentiment(words []string) []string {
	var sent []string
	hasGeneric := func() bool {
		for _, s := range sent {
			if s == sentGeneric {
				return true
			}
		}
		return false
	}

	for i, w := range words {
		switch {
		case isDigits(w):
			// Numbers are most likely generic identifiers.
			sent = append(sent, sentGeneric)
		case w == "neuron":
			// A lonely "neuron" followed by a number is generic,
			// otherwise it is type information.
			if i+1 < len(words) && isDigits(words[i+1]) {
				sent = append(sent, sentGeneric)
			} else {
				sent = append(sent, sentType)
			}
		case isUpperAlpha(w) && len(w) > 1 && hasGeneric():
			// Short all-caps words after the generic part are
			// probably tracer initials.
			sent = append(sent, sentTracer)
		default:
			if hasGeneric() {
				sent = append(sent, sentNickname)
			} else {
				sent = append(sent, sentType)
			}
		}
	}
	return sent
}

// ParseName splits a neuron name into type, nickname, tracer and generic
// parts. This is a best-effort heuristic, not a grammar.
func ParseName(name string) (typ, nickname, tracer, generic string) {
	words := strings.Split(name, " ")
	sentiments := guessSentiment(words)

	pick := func(want string) string {
		var out []string
		for i, w := range words {
			if sentiments[i] == want {
				out = append(out, w)
			}
		}
		return strings.Join(out, " ")
	}
	return pick(sentType), pick(sentNickname), pick(sentTracer), pick(sentGeneric)
}

// ShortenName shortens a neuron name to at most maxLen characters by
// iteratively dropping generic, then tracer, then nickname, then type
// words, each replaced by a single "[..]" marker.
func ShortenName(name string, maxLen int) string {
	words := strings.Split(name, " ")
	sentiments := guessSentiment(words)

	short := name
	for _, t := range []string{sentGeneric, sentTracer, sentNickname, sentType} {
		for i := len(words) - 1; i >= 0; i-- {
			if len(short) <= maxLen {
				return short
			}
			if len(strings.Fields(strings.ReplaceAll(short, "[..]", ""))) == 1 {
				return short
			}
			if sentiments[i] != t {
				continue
			}
			short = strings.TrimSpace(strings.ReplaceAll(short, words[i], "[..]"))
			for strings.Contains(short, "[..] [..]") {
				short = strings.ReplaceAll(short, "[..] [..]", "[..]")
			}
		}
	}
	return short
}
