package llm

import (
	"context"

	"context-assistant/internal/prompt"
)

// Client sends one assembled prompt and returns the raw completion text.
// Implementations make at most one request per call and never retry.
// Failures are *apperr.Error values tagged with their cause.
type Client interface {
	Complete(ctx context.Context, spec prompt.Spec) (string, error)
}
