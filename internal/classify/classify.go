package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind distinguishes dialogue transcripts from standalone passages.
type Kind string

const (
	Informational Kind = "informational"
	Conversation  Kind = "conversation"
)

// Result is the outcome of classifying one input.
type Result struct {
	Kind Kind
	// LastMessage is the final turn by position, verbatim from the input.
	// Empty unless Kind is Conversation.
	LastMessage string
	// Speaker is the label of the last turn when it had one.
	Speaker string
	// Turns counts the dialogue turns found.
	Turns int
}

// IsConversation reports whether r classified the input as dialogue.
func (r Result) IsConversation() bool { return r.Kind == Conversation }

const (
	maxUnlabeledLines = 12
	maxUnlabeledRunes = 200
)

var (
	// "Alice: hi", "[12:01] Bob Smith: ok", "09:15 - Carol: sure"
	speakerLine = regexp.MustCompile(`^(?:\[[^\]\n]{1,40}\]\s*)?(?:\d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp][Mm])?\s*[-–]?\s*)?(\p{L}[\p{L}\p{N}._'-]*(?: [\p{L}\p{N}._'-]+){0,2}):\s+\S`)
	// "[Alice] hi", "[12:01] hi"
	bracketLine = regexp.MustCompile(`^\[([^\]\n]{1,40})\]\s+\S`)
	// "12:01 hi"
	timestampLine = regexp.MustCompile(`^\d{1,2}:\d{2}(?::\d{2})?\b\s*\S`)
	quoteLine     = regexp.MustCompile(`^>`)
	clockOnly     = regexp.MustCompile(`^\d{1,2}:\d{2}(?::\d{2})?$`)
)

const maxSpeakerLen = 32

// Document and email header fields look like speaker labels but introduce
// metadata, not a turn.
var headerFields = map[string]struct{}{
	"subject": {}, "date": {}, "from": {}, "to": {}, "cc": {}, "bcc": {},
	"re": {}, "fwd": {}, "sent": {}, "title": {}, "author": {}, "tags": {},
	"category": {}, "keywords": {}, "version": {}, "status": {},
}

type lineKind int

const (
	plainLine lineKind = iota
	turnLine
	quotedLine
)

type turn struct {
	start, end int // byte offsets into the input
	speaker    string
	marked     bool
	quoted     bool
}

// Classify decides whether text is a conversation transcript and, if so,
// extracts its last message by position. Ambiguous input is Informational.
func Classify(text string) Result {
	lines := splitLines(text)

	var turns []turn
	markers := 0
	for _, ln := range lines {
		body := strings.TrimSpace(text[ln.start:ln.end])
		if body == "" {
			continue
		}
		kind, speaker := markerOf(body)
		switch kind {
		case turnLine:
			markers++
			turns = append(turns, turn{start: ln.start, end: ln.end, speaker: speaker, marked: true})
		case quotedLine:
			markers++
			if n := len(turns); n > 0 && turns[n-1].quoted {
				turns[n-1].end = ln.end
				continue
			}
			turns = append(turns, turn{start: ln.start, end: ln.end, quoted: true})
		default:
			if n := len(turns); n > 0 && !turns[n-1].quoted {
				turns[n-1].end = ln.end
				continue
			}
			// Unmarked text after a quote block is the reply to it.
			turns = append(turns, turn{start: ln.start, end: ln.end})
		}
	}

	if markers == 0 {
		return classifyUnlabeled(text, lines)
	}

	marked, quoted := 0, 0
	for _, t := range turns {
		if t.quoted {
			quoted++
		} else if t.marked {
			marked++
		}
	}
	// A reply to a quote block needs at least two marker lines; a single
	// quoted epigraph followed by commentary is still a passage.
	replied := quoted > 0 && markers >= 2 && !turns[len(turns)-1].quoted
	if marked < 2 && !replied {
		return Result{Kind: Informational}
	}

	last := lastUnquoted(turns)
	if last < 0 {
		return Result{Kind: Informational}
	}
	t := turns[last]
	return Result{
		Kind:        Conversation,
		LastMessage: strings.TrimSpace(text[t.start:t.end]),
		Speaker:     t.speaker,
		Turns:       len(turns),
	}
}

func markerOf(line string) (lineKind, string) {
	if quoteLine.MatchString(line) {
		return quotedLine, ""
	}
	if m := speakerLine.FindStringSubmatch(line); m != nil && len(m[1]) <= maxSpeakerLen {
		if _, ok := headerFields[strings.ToLower(m[1])]; ok {
			return plainLine, ""
		}
		return turnLine, m[1]
	}
	if m := bracketLine.FindStringSubmatch(line); m != nil {
		if clockOnly.MatchString(strings.TrimSpace(m[1])) {
			return turnLine, ""
		}
		return turnLine, m[1]
	}
	if timestampLine.MatchString(line) {
		return turnLine, ""
	}
	return plainLine, ""
}

// classifyUnlabeled handles short exchanges without speaker labels, such as
// a question on one line answered on the next. This trades against "no
// markers means Informational": a short FAQ pair ("What is Go?" followed by
// its answer) is also read as a conversation and answered as a reply.
func classifyUnlabeled(text string, lines []span) Result {
	var nonEmpty []span
	for _, ln := range lines {
		if strings.TrimSpace(text[ln.start:ln.end]) != "" {
			nonEmpty = append(nonEmpty, ln)
		}
	}
	if len(nonEmpty) < 2 || len(nonEmpty) > maxUnlabeledLines {
		return Result{Kind: Informational}
	}
	asked := false
	for i, ln := range nonEmpty {
		body := strings.TrimSpace(text[ln.start:ln.end])
		if utf8.RuneCountInString(body) > maxUnlabeledRunes {
			return Result{Kind: Informational}
		}
		if i < len(nonEmpty)-1 && (strings.HasSuffix(body, "?") || strings.HasSuffix(body, "？")) {
			asked = true
		}
	}
	if !asked {
		return Result{Kind: Informational}
	}
	last := nonEmpty[len(nonEmpty)-1]
	return Result{
		Kind:        Conversation,
		LastMessage: strings.TrimSpace(text[last.start:last.end]),
		Turns:       len(nonEmpty),
	}
}

func lastUnquoted(turns []turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if !turns[i].quoted {
			return i
		}
	}
	return -1
}

type span struct{ start, end int }

// splitLines returns line spans without their terminators; "\r\n" counts as one break.
func splitLines(text string) []span {
	var out []span
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		end := i
		if end > start && text[end-1] == '\r' {
			end--
		}
		out = append(out, span{start, end})
		start = i + 1
	}
	if start < len(text) {
		out = append(out, span{start, len(text)})
	}
	return out
}
