package shell

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"context-assistant/internal/apperr"
	"context-assistant/internal/pipeline"
	"context-assistant/internal/platform"
	"context-assistant/internal/prompt"
)

// State of the panel window.
type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// Processor runs one invocation of the pipeline.
type Processor interface {
	Run(ctx context.Context, text string, opts prompt.Options) (pipeline.Result, error)
}

// Factory builds a processor for the current credential. noLLM selects
// the offline fallback and must not require a key.
type Factory func(apiKey string, noLLM bool) (Processor, error)

// View is what the panel renders.
type View struct {
	Visible bool   `json:"visible"`
	Prefill string `json:"prefill"`
	Status  string `json:"status"`
	HasKey  bool   `json:"has_key"`
}

// Outcome of Process. CopyErr is a warning: the result is still valid.
type Outcome struct {
	Result  pipeline.Result
	Copied  bool
	CopyErr error
}

// Shell is the panel's state machine: Hidden and Visible, switched by the
// hotkey and the close action. The API key lives only in memory.
type Shell struct {
	clipboard platform.Clipboard
	factory   Factory
	log       *slog.Logger

	mu      sync.Mutex
	state   State
	prefill string
	status  string
	apiKey  string
}

// New returns a hidden shell.
func New(cb platform.Clipboard, factory Factory, apiKey string, log *slog.Logger) *Shell {
	return &Shell{
		clipboard: cb,
		factory:   factory,
		log:       log,
		apiKey:    strings.TrimSpace(apiKey),
		status:    "Ready",
	}
}

// Activate handles a hotkey press: show the window and prefill the input
// from the clipboard. A clipboard failure leaves the old prefill in place.
func (s *Shell) Activate() {
	text, err := s.clipboard.ReadText()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Visible
	if err != nil {
		s.status = "Clipboard unavailable"
		s.log.Warn("clipboard read failed", "err", err)
		return
	}
	s.prefill = text
	s.status = "Ready"
}

// Close hides the window. Closing a hidden window does nothing.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Hidden
}

// State reports whether the window is shown.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns a snapshot for rendering.
func (s *Shell) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Visible: s.state == Visible,
		Prefill: s.prefill,
		Status:  s.status,
		HasKey:  s.apiKey != "",
	}
}

// SetAPIKey replaces the credential for subsequent invocations.
func (s *Shell) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = strings.TrimSpace(key)
	s.status = "API key updated"
}

// Process runs the pipeline on text and copies the result to the
// clipboard. The pipeline runs outside the lock so the hotkey and close
// stay responsive while a completion is in flight.
func (s *Shell) Process(ctx context.Context, text string, opts prompt.Options, noLLM bool) (Outcome, error) {
	s.mu.Lock()
	key := s.apiKey
	s.status = "Processing..."
	s.mu.Unlock()

	out, err := s.process(ctx, key, text, opts, noLLM)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil:
		s.status = statusFor(err)
	case out.CopyErr != nil:
		s.status = "Done (copy to clipboard failed)"
	default:
		s.status = "Done (copied to clipboard)"
	}
	return out, err
}

func (s *Shell) process(ctx context.Context, key, text string, opts prompt.Options, noLLM bool) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Outcome{}, apperr.Newf(apperr.KindInput, "read input", "no text provided")
	}
	proc, err := s.factory(key, noLLM)
	if err != nil {
		return Outcome{}, err
	}
	res, err := proc.Run(ctx, text, opts)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Result: res}
	if err := s.clipboard.WriteText(res.Text); err != nil {
		out.CopyErr = apperr.New(apperr.KindOutput, "copy result", err)
		s.log.Warn("copy to clipboard failed", "err", err)
		return out, nil
	}
	out.Copied = true
	return out, nil
}

func statusFor(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInput:
		return "Error: no usable input"
	case apperr.KindAuth:
		return "API key required or rejected"
	case apperr.KindRateLimit:
		return "Rate limited; try again shortly"
	case apperr.KindNetwork:
		return "Network error; try again"
	default:
		return fmt.Sprintf("Error: %s", apperr.KindOf(err))
	}
}
