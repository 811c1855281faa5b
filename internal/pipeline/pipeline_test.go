package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"context-assistant/internal/apperr"
	"context-assistant/internal/classify"
	"context-assistant/internal/llm"
	"context-assistant/internal/logger"
	"context-assistant/internal/prompt"
)

func TestRunConversationFallback(t *testing.T) {
	p := New(llm.NewFallback(), logger.Discard())

	res, err := p.Run(context.Background(), "Hello, how are you?\nI'm fine, thanks! And you?", prompt.Options{})
	require.NoError(t, err)

	assert.Equal(t, classify.Conversation, res.Classification.Kind)
	assert.Equal(t, "I'm fine, thanks! And you?", res.Classification.LastMessage)
	assert.Equal(t, language.English, res.Language)
	assert.True(t, res.Fallback)
	assert.Equal(t, "[Conversation detected. Last message: I'm fine, thanks! And you?]", res.Text)
}

func TestRunConversationPromptTargetsLastMessage(t *testing.T) {
	m := new(llm.MockClient)
	m.On("Complete", mock.Anything, mock.MatchedBy(func(s prompt.Spec) bool {
		return s.Classification.IsConversation() &&
			s.Classification.LastMessage == "I'm fine, thanks! And you?"
	})).Return("Answer: Doing great!", nil).Once()

	p := New(m, logger.Discard())
	res, err := p.Run(context.Background(), "Hello, how are you?\nI'm fine, thanks! And you?", prompt.Options{})
	require.NoError(t, err)

	assert.Equal(t, "Doing great!", res.Text)
	assert.False(t, res.Fallback)
	m.AssertExpectations(t)
}

func TestRunEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t\n"} {
		m := new(llm.MockClient)
		p := New(m, logger.Discard())
		p.classify = func(string) classify.Result {
			t.Fatal("classifier must not run for empty input")
			return classify.Result{}
		}

		_, err := p.Run(context.Background(), in, prompt.Options{})
		require.Error(t, err)
		assert.Equal(t, apperr.KindInput, apperr.KindOf(err))
		m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	}
}

func TestRunInformationalFallbackDeterministic(t *testing.T) {
	p := New(llm.NewFallback(), logger.Discard())
	opts := prompt.Options{Intent: "explain", Length: prompt.LengthShort}

	first, err := p.Run(context.Background(), "The capital of France is Paris.", opts)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), "The capital of France is Paris.", opts)
	require.NoError(t, err)

	assert.Equal(t, classify.Informational, first.Classification.Kind)
	assert.Equal(t, "[Informational content detected (intent: explain): The capital of France is Paris.]", first.Text)
	assert.Equal(t, first.Text, second.Text)
	assert.NotEqual(t, first.InvocationID, second.InvocationID)
}

func TestRunInvalidOptions(t *testing.T) {
	m := new(llm.MockClient)
	p := New(m, logger.Discard())

	_, err := p.Run(context.Background(), "Some text.", prompt.Options{Length: "enormous"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInput, apperr.KindOf(err))
	m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestRunCompletionErrorKeepsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{"auth", apperr.New(apperr.KindAuth, "complete", errors.New("bad key")), apperr.KindAuth},
		{"rate limit", apperr.New(apperr.KindRateLimit, "complete", errors.New("429")), apperr.KindRateLimit},
		{"network", apperr.New(apperr.KindNetwork, "complete", errors.New("dial")), apperr.KindNetwork},
		{"untagged", errors.New("mystery"), apperr.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(llm.MockClient)
			m.On("Complete", mock.Anything, mock.Anything).Return("", tt.err).Once()

			_, err := New(m, logger.Discard()).Run(context.Background(), "The sky is blue.", prompt.Options{})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			m.AssertExpectations(t)
		})
	}
}

func TestRunEmptyAfterCleaning(t *testing.T) {
	m := new(llm.MockClient)
	m.On("Complete", mock.Anything, mock.Anything).Return("   \n  ", nil).Once()

	_, err := New(m, logger.Discard()).Run(context.Background(), "The sky is blue.", prompt.Options{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindMalformed, apperr.KindOf(err))
}

func TestRunClassificationFault(t *testing.T) {
	m := new(llm.MockClient)
	p := New(m, logger.Discard())
	p.classify = func(string) classify.Result { panic("regexp exploded") }

	_, err := p.Run(context.Background(), "Anything at all.", prompt.Options{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindClassification, apperr.KindOf(err))
	m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}
