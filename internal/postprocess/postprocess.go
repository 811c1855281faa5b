package postprocess

import (
	"regexp"
	"strings"
)

var (
	// Leading labels the model sometimes emits despite instructions.
	metaLabel = regexp.MustCompile(`(?i)^(?:\*\*|__)?(?:final answer|answer|response|reply|result|output|translation|summary)(?:\*\*|__)?\s*[:：]\s*(?:\*\*|__)?\s*`)
	// "Here is the reply:" / "Here's a summary:" lead-in lines.
	hereIs = regexp.MustCompile(`(?i)^here(?: is|'s|’s) (?:the|a|an|your|my)\b[^\n]{0,60}[:：]\s*\n`)
	fence  = regexp.MustCompile("^```[a-zA-Z0-9_-]*\\n([\\s\\S]*?)\\n?```$")
)

var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"},
	{"«", "»"},
	{"「", "」"},
}

// Clean trims whitespace and strips residual meta-text (answer labels,
// lead-in lines, a wrapping code fence or quote pair) from a model reply.
// It never fails and Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := strings.TrimSpace(strip(s))
		if next == s {
			return s
		}
		s = next
	}
}

func strip(s string) string {
	if m := fence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if loc := hereIs.FindStringIndex(s); loc != nil {
		return s[loc[1]:]
	}
	if loc := metaLabel.FindStringIndex(s); loc != nil && loc[1] < len(s) {
		return s[loc[1]:]
	}
	for _, q := range quotePairs {
		if len(s) > len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			inner := s[len(q[0]) : len(s)-len(q[1])]
			// Only a single wrapping pair, not `"a" and "b"`.
			if !strings.Contains(inner, q[0]) && !strings.Contains(inner, q[1]) {
				return inner
			}
		}
	}
	return s
}
