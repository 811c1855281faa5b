package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"context-assistant/internal/apperr"
	"context-assistant/internal/classify"
	"context-assistant/internal/langdetect"
	"context-assistant/internal/llm"
	"context-assistant/internal/postprocess"
	"context-assistant/internal/prompt"
)

// Result is the outcome of one invocation. Nothing is retained after it
// is handed to the output sink.
type Result struct {
	Text           string
	Classification classify.Result
	Language       language.Tag
	Fallback       bool
	InvocationID   uuid.UUID
}

// Pipeline turns selected text into a single answer. It holds no state
// between invocations and is safe to share.
type Pipeline struct {
	llm      llm.Client
	log      *slog.Logger
	classify func(string) classify.Result
	detect   func(string) language.Tag
}

// New builds a pipeline that completes prompts with client.
func New(client llm.Client, log *slog.Logger) *Pipeline {
	return &Pipeline{
		llm:      client,
		log:      log,
		classify: classify.Classify,
		detect:   langdetect.Detect,
	}
}

// Run processes text once: classify, detect language, build the prompt,
// complete it and clean the result. Empty input fails before any of that.
func (p *Pipeline) Run(ctx context.Context, text string, opts prompt.Options) (Result, error) {
	id := uuid.New()
	log := p.log.With("invocation_id", id.String())

	if strings.TrimSpace(text) == "" {
		return Result{}, apperr.Newf(apperr.KindInput, "read input", "no text provided")
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	cls, lang, err := p.analyze(text)
	if err != nil {
		log.Error("classification fault", "err", err)
		return Result{}, err
	}
	log.Debug("input analyzed",
		"kind", cls.Kind,
		"turns", cls.Turns,
		"language", lang.String(),
		"chars", len(text),
	)

	spec := prompt.Build(text, opts, cls, lang)
	_, fallback := p.llm.(llm.Fallback)

	raw, err := p.llm.Complete(ctx, spec)
	if err != nil {
		log.Warn("completion failed",
			"err", err,
			"kind", apperr.KindOf(err).String(),
			"retryable", apperr.IsRetryable(err),
		)
		return Result{}, fmt.Errorf("completion failed: %w", err)
	}

	out := postprocess.Clean(raw)
	if out == "" {
		return Result{}, apperr.Newf(apperr.KindMalformed, "clean result", "completion was empty after cleaning")
	}
	log.Info("invocation complete", "kind", cls.Kind, "fallback", fallback, "result_chars", len(out))

	return Result{
		Text:           out,
		Classification: cls,
		Language:       lang,
		Fallback:       fallback,
		InvocationID:   id,
	}, nil
}

// analyze runs the heuristics. They always produce a result, so a panic
// here is an internal fault and is reported as a classification error.
func (p *Pipeline) analyze(text string) (cls classify.Result, lang language.Tag, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperr.Newf(apperr.KindClassification, "analyze input", "internal fault: %v", rec)
		}
	}()
	return p.classify(text), p.detect(text), nil
}
