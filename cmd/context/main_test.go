package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"context-assistant/internal/app"
	"context-assistant/internal/apperr"
	"context-assistant/internal/config"
	"context-assistant/internal/logger"
	"context-assistant/internal/platform"
)

func newTestDeps(cb platform.Clipboard, cfg config.Config) app.Deps {
	return app.Deps{
		Config:    cfg,
		Log:       logger.Discard(),
		Clipboard: cb,
	}
}

// execute runs the CLI with a piped (non-terminal) stdin.
func execute(t *testing.T, deps app.Deps, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(deps, func() bool { return false })
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func completionServer(t *testing.T, status int, content string, model *string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if model != nil {
			*model = body.Model
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream said no"}}`))
			return
		}
		resp := map[string]any{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1700000000, "model": body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOut  string
		wantCode int
	}{
		{
			name:    "informational fallback",
			args:    []string{"The capital of France is Paris.", "--no-llm"},
			wantOut: "[Informational content detected: The capital of France is Paris.]\n",
		},
		{
			name:    "conversation fallback",
			args:    []string{"Hello, how are you?\nI'm fine, thanks! And you?", "--no-llm"},
			wantOut: "[Conversation detected. Last message: I'm fine, thanks! And you?]\n",
		},
		{
			name:    "intent noted offline",
			args:    []string{"--no-llm", "--intent", "summarize", "Go is a language."},
			wantOut: "[Informational content detected (intent: summarize): Go is a language.]\n",
		},
		{
			name:     "empty input",
			args:     []string{"   ", "--no-llm"},
			wantCode: 2,
		},
		{
			name:     "bad length",
			args:     []string{"--length", "huge", "--no-llm", "text"},
			wantCode: 2,
		},
		{
			name:     "missing key",
			args:     []string{"Hello there."},
			wantCode: 3,
		},
		{
			name:     "unknown flag",
			args:     []string{"--bogus"},
			wantCode: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, newTestDeps(platform.NewMemoryClipboard(""), config.Config{}), "", tt.args...)
			assert.Equal(t, tt.wantCode, apperr.ExitCode(err), "err: %v", err)
			if tt.wantCode == 0 {
				assert.Equal(t, tt.wantOut, out)
			} else {
				assert.Empty(t, out)
			}
		})
	}
}

func TestEmptyInputMakesNoRequest(t *testing.T) {
	srv, calls := completionServer(t, http.StatusOK, "never", nil)
	deps := newTestDeps(platform.NewMemoryClipboard(""), config.Config{LLMBaseURL: srv.URL + "/v1"})

	_, _, err := execute(t, deps, "", "--api-key", "sk-test", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInput, apperr.KindOf(err))
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestCompletionPath(t *testing.T) {
	var model string
	srv, calls := completionServer(t, http.StatusOK, "  Answer: \"Doing well, thanks!\"  ", &model)
	deps := newTestDeps(platform.NewMemoryClipboard(""), config.Config{
		OpenAIKey:  "sk-env",
		LLMModel:   "gpt-4o-mini",
		LLMBaseURL: srv.URL + "/v1",
	})

	out, _, err := execute(t, deps, "", "--model", "gpt-4.1-mini", "Alice: how are you?\nBob: good, you?")
	require.NoError(t, err)
	assert.Equal(t, "Doing well, thanks!\n", out)
	assert.Equal(t, "gpt-4.1-mini", model)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestCompletionErrorsExitCodes(t *testing.T) {
	tests := []struct {
		status   int
		wantCode int
	}{
		{http.StatusUnauthorized, 3},
		{http.StatusTooManyRequests, 4},
		{http.StatusServiceUnavailable, 4},
		{http.StatusUnprocessableEntity, 3},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, calls := completionServer(t, tt.status, "", nil)
			deps := newTestDeps(platform.NewMemoryClipboard(""), config.Config{LLMBaseURL: srv.URL + "/v1"})

			out, _, err := execute(t, deps, "", "--api-key", "sk-test", "Some text.")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.ExitCode(err))
			assert.Empty(t, out)
			assert.EqualValues(t, 1, atomic.LoadInt32(calls), "no retries")
		})
	}
}

func TestInputSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("Water boils at 100 degrees."), 0o600))

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"file", "", []string{"-f", path}, "Water boils at 100 degrees."},
		{"clipboard", "", []string{"--clipboard"}, "Copied words here."},
		{"piped stdin", "Piped sentence.", nil, "Piped sentence."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(platform.NewMemoryClipboard("Copied words here."), config.Config{})
			out, _, err := execute(t, deps, tt.stdin, append(tt.args, "--no-llm")...)
			require.NoError(t, err)
			assert.Equal(t, "[Informational content detected: "+tt.want+"]\n", out)
		})
	}

	_, _, err := execute(t, newTestDeps(platform.NewMemoryClipboard(""), config.Config{}), "", "-f", filepath.Join(t.TempDir(), "nope.txt"), "--no-llm")
	assert.Equal(t, 2, apperr.ExitCode(err))
}

func TestInteractivePrompt(t *testing.T) {
	cmd := newRootCmd(newTestDeps(platform.NewMemoryClipboard(""), config.Config{}), func() bool { return true })
	var stdout, stderr bytes.Buffer
	cmd.SetArgs([]string{"--no-llm"})
	cmd.SetIn(strings.NewReader("Typed at the terminal.\n"))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "Enter text")
	assert.Equal(t, "[Informational content detected: Typed at the terminal.]\n", stdout.String())
}

func TestCopyFlag(t *testing.T) {
	cb := platform.NewMemoryClipboard("")
	out, _, err := execute(t, newTestDeps(cb, config.Config{}), "", "--copy", "--no-llm", "Short fact.")
	require.NoError(t, err)

	copied, _ := cb.ReadText()
	assert.Equal(t, strings.TrimSuffix(out, "\n"), copied)

	failing := new(platform.MockClipboard)
	failing.On("WriteText", mock.Anything).Return(errors.New("no display")).Once()
	out, _, err = execute(t, newTestDeps(failing, config.Config{}), "", "--copy", "--no-llm", "Short fact.")
	require.Error(t, err)
	assert.Equal(t, 5, apperr.ExitCode(err))
	assert.NotEmpty(t, out, "result is printed before the copy is attempted")
	failing.AssertExpectations(t)
}
