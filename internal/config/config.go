package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration read from the environment.
// CLI flags override individual fields after Load.
type Config struct {
	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "text" or "json"

	// LLM
	OpenAIKey      string        `env:"OPENAI_API_KEY"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMBaseURL     string        `env:"LLM_BASE_URL"` // OpenAI-compatible endpoint; empty uses api.openai.com
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMMaxTokens   int64         `env:"LLM_MAX_TOKENS" envDefault:"1000"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	NoLLM          bool          `env:"CONTEXT_NO_LLM" envDefault:"false"` // force fallback mode

	// Panel
	PanelAddr string `env:"PANEL_ADDR" envDefault:"127.0.0.1:7865"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
