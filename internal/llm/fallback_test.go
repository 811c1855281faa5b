package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"context-assistant/internal/classify"
	"context-assistant/internal/prompt"
)

func TestFallbackInformational(t *testing.T) {
	in := "The capital of France is Paris."
	spec := prompt.Build(in, prompt.Options{}, classify.Classify(in), language.English)

	got, err := NewFallback().Complete(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "[Informational content detected: The capital of France is Paris.]", got)
}

func TestFallbackConversation(t *testing.T) {
	in := "Hello, how are you?\nI'm fine, thanks! And you?"
	spec := prompt.Build(in, prompt.Options{Intent: "reply"}, classify.Classify(in), language.English)

	got, err := NewFallback().Complete(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "[Conversation detected (intent: reply). Last message: I'm fine, thanks! And you?]", got)
}

func TestFallbackTruncates(t *testing.T) {
	in := strings.Repeat("é", 150)
	spec := prompt.Build(in, prompt.Options{}, classify.Result{Kind: classify.Informational}, language.Und)

	got, err := NewFallback().Complete(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "[Informational content detected: "+strings.Repeat("é", 100)+"...]", got)
}

func TestFallbackDeterministic(t *testing.T) {
	in := "Alice: ready?\nBob: almost, five minutes"
	opts := prompt.Options{Intent: "reply", Style: "casual", Length: prompt.LengthShort}
	spec := prompt.Build(in, opts, classify.Classify(in), language.English)

	first, err := NewFallback().Complete(context.Background(), spec)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := NewFallback().Complete(context.Background(), spec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
