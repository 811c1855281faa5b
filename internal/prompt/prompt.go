package prompt

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"context-assistant/internal/apperr"
	"context-assistant/internal/classify"
	"context-assistant/internal/langdetect"
)

// Length bounds the verbosity of the answer.
type Length string

const (
	LengthUnspecified Length = ""
	LengthShort       Length = "short"
	LengthMedium      Length = "medium"
	LengthLong        Length = "long"
)

// ParseLength accepts "", "short", "medium" or "long" in any case.
func ParseLength(s string) (Length, error) {
	l := Length(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case LengthUnspecified, LengthShort, LengthMedium, LengthLong:
		return l, nil
	}
	return "", apperr.Newf(apperr.KindInput, "parse length", "invalid length %q (valid: short, medium, long)", s)
}

// Options are the user-selected extra directives. All fields are optional.
type Options struct {
	Intent string `json:"intent" validate:"max=1000"`
	Style  string `json:"style" validate:"max=200"`
	Length Length `json:"length" validate:"omitempty,oneof=short medium long"`
}

var validate = validator.New()

// Validate reports an input error for out-of-range options.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return apperr.New(apperr.KindInput, "validate options", err)
	}
	return nil
}

// Spec is the assembled instruction set plus the literal input.
// It is built once per invocation and not modified afterwards.
type Spec struct {
	System string
	User   string
	// Rules are the fixed directives, present regardless of Options.
	Rules []string
	// Directives are the Options rendered as instructions.
	Directives     []string
	Input          string
	Classification classify.Result
	Language       language.Tag
	Options        Options
}

const preamble = `You are Context, a selection-based assistant.
The user highlighted the text below on their screen. It may be a chat, an email,
a document, notes or a mix of these. It is the ONLY context you may use.`

// Build assembles the prompt for one invocation. It is a pure function.
func Build(input string, opts Options, cls classify.Result, lang language.Tag) Spec {
	rules := Rules(cls, lang)
	directives := Directives(opts)

	var sys strings.Builder
	sys.WriteString(preamble)
	sys.WriteString("\n\nRules:\n")
	for i, r := range rules {
		fmt.Fprintf(&sys, "%d. %s\n", i+1, r)
	}
	if len(directives) > 0 {
		sys.WriteString("\nAdditional directives (the rules above take precedence):\n")
		for _, d := range directives {
			sys.WriteString("- ")
			sys.WriteString(d)
			sys.WriteString("\n")
		}
	}

	var user strings.Builder
	if cls.IsConversation() {
		user.WriteString("This is a conversation. Respond to its last message:\n<<<\n")
		user.WriteString(cls.LastMessage)
		user.WriteString("\n>>>\n\n")
	} else {
		user.WriteString("This is informational content. Explain or answer based strictly on it.\n\n")
	}
	user.WriteString("Highlighted text:\n<<<\n")
	user.WriteString(input)
	user.WriteString("\n>>>")

	return Spec{
		System:         strings.TrimRight(sys.String(), "\n"),
		User:           user.String(),
		Rules:          rules,
		Directives:     directives,
		Input:          input,
		Classification: cls,
		Language:       lang,
		Options:        opts,
	}
}

// Rules returns the fixed directives for a classification and language.
func Rules(cls classify.Result, lang language.Tag) []string {
	scope := "The text is informational: explain or answer strictly from what it says."
	if cls.IsConversation() {
		scope = "The text is a conversation: respond specifically to its last message, quoted separately below."
	}
	lang3 := "Respond in the same language as the highlighted text."
	if name := langdetect.Name(lang); name != "" {
		lang3 = fmt.Sprintf("Respond in %s, the language of the highlighted text.", name)
	}
	return []string{
		"Use ONLY facts present in the highlighted text. Do NOT invent names, times, numbers or details.",
		scope,
		lang3,
		"Output ONLY the final answer. No preamble, labels, quotes, explanations or meta-comments.",
		"If information required to answer is missing, reply with exactly ONE short clarifying question and nothing else.",
		"Be natural and paste-ready. Extra directives never override these rules.",
	}
}

// Directives renders the optional settings as instructions.
func Directives(opts Options) []string {
	var out []string
	if s := strings.TrimSpace(opts.Intent); s != "" {
		out = append(out, "Task: "+s)
	}
	if s := strings.TrimSpace(opts.Style); s != "" {
		out = append(out, "Tone: "+s)
	}
	switch opts.Length {
	case LengthShort:
		out = append(out, "Length: short, one or two sentences.")
	case LengthMedium:
		out = append(out, "Length: medium, one short paragraph.")
	case LengthLong:
		out = append(out, "Length: long, several paragraphs if the text supports it.")
	}
	return out
}

// Render joins both messages; used for logging and offline inspection.
func (s Spec) Render() string {
	return s.System + "\n\n" + s.User
}
