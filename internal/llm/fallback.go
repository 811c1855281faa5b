package llm

import (
	"context"
	"fmt"
	"strings"

	"context-assistant/internal/prompt"
)

// previewRunes caps how much of the input the fallback echoes back.
const previewRunes = 100

// Fallback answers without any network call. It echoes what the pipeline
// detected so the tool stays usable offline and without a credential.
// Output depends only on the prompt spec.
type Fallback struct{}

// NewFallback returns the offline client.
func NewFallback() Fallback { return Fallback{} }

func (Fallback) Complete(_ context.Context, spec prompt.Spec) (string, error) {
	intent := ""
	if s := strings.TrimSpace(spec.Options.Intent); s != "" {
		intent = fmt.Sprintf(" (intent: %s)", s)
	}
	if spec.Classification.IsConversation() {
		return fmt.Sprintf("[Conversation detected%s. Last message: %s]", intent, preview(spec.Classification.LastMessage)), nil
	}
	return fmt.Sprintf("[Informational content detected%s: %s]", intent, preview(spec.Input)), nil
}

// preview collapses whitespace and truncates to previewRunes runes.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= previewRunes {
		return s
	}
	return string(r[:previewRunes]) + "..."
}
