package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"context-assistant/internal/config"
	"context-assistant/internal/llm"
	"context-assistant/internal/logger"
	"context-assistant/internal/pipeline"
	"context-assistant/internal/platform"
)

// Deps bundles common runtime dependencies for both binaries.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Clipboard platform.Clipboard
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	if err := LoadEnv(); err != nil {
		return Deps{}, err
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	return Deps{
		Config:    cfg,
		Log:       log,
		Clipboard: buildClipboard(log),
	}, nil
}

// LoadEnv reads .env from the working directory if present. A missing
// file is not an error; a malformed one is.
func LoadEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// NewPipeline builds a pipeline for the given credential. noLLM, or the
// CONTEXT_NO_LLM setting, selects the offline fallback.
func NewPipeline(deps Deps, apiKey string, noLLM bool) (*pipeline.Pipeline, error) {
	client, err := buildLLM(deps.Config, apiKey, noLLM || deps.Config.NoLLM, deps.Log)
	if err != nil {
		return nil, err
	}
	return pipeline.New(client, deps.Log), nil
}

func buildLLM(cfg config.Config, apiKey string, noLLM bool, log *slog.Logger) (llm.Client, error) {
	if noLLM {
		log.Debug("using fallback LLM client")
		return llm.NewFallback(), nil
	}
	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:      apiKey,
		Model:       cfg.LLMModel,
		BaseURL:     cfg.LLMBaseURL,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	log.Debug("using OpenAI LLM client", "model", cfg.LLMModel, "base_url", cfg.LLMBaseURL)
	return client, nil
}

func buildClipboard(log *slog.Logger) platform.Clipboard {
	if platform.ClipboardSupported() {
		return platform.SystemClipboard{}
	}
	log.Warn("no system clipboard available; using in-memory clipboard")
	return platform.NewMemoryClipboard("")
}
