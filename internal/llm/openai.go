package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"context-assistant/internal/apperr"
	"context-assistant/internal/prompt"
)

// OpenAIClient calls the OpenAI Chat Completions API, or any endpoint
// speaking the same protocol when BaseURL is set.
type OpenAIClient struct {
	model       openai.ChatModel
	temperature float64
	maxTokens   int64
	timeout     time.Duration
	client      *openai.Client
}

// OpenAIConfig configures NewOpenAIClient. Zero values fall back to defaults.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

const (
	defaultChatTimeout   = 60 * time.Second
	defaultChatMaxTokens = 1000
	completeOp           = "complete"
)

// NewOpenAIClient builds a client with SDK retries disabled.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperr.Newf(apperr.KindAuth, "new openai client", "api key required (set OPENAI_API_KEY or pass --api-key)")
	}
	model := openai.ChatModel(cfg.Model)
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultChatMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChatTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIClient{
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		client:      &cli,
	}, nil
}

// Complete issues a single synchronous chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, spec prompt.Spec) (string, error) {
	if c == nil || c.client == nil {
		return "", apperr.Newf(apperr.KindMalformed, completeOp, "nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:               c.model,
		Messages:            buildMessages(spec.System, spec.User),
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Newf(apperr.KindMalformed, completeOp, "openai: no choices returned")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", apperr.Newf(apperr.KindMalformed, completeOp, "openai: empty completion (finish reason %q)", resp.Choices[0].FinishReason)
	}
	return content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}

// classifyError tags an SDK error with its cause so callers can tell
// retryable failures (network, rate limit) from terminal ones.
func classifyError(err error) *apperr.Error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		e := &apperr.Error{Op: completeOp, Status: apiErr.StatusCode, Err: err}
		switch code := apiErr.StatusCode; {
		case code == http.StatusUnauthorized, code == http.StatusForbidden:
			e.Kind = apperr.KindAuth
		case code == http.StatusTooManyRequests:
			e.Kind = apperr.KindRateLimit
		case code == http.StatusRequestTimeout, code >= http.StatusInternalServerError:
			e.Kind = apperr.KindNetwork
		default:
			e.Kind = apperr.KindMalformed
		}
		return e
	}

	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.As(err, &netErr), errors.As(err, &urlErr):
		return apperr.New(apperr.KindNetwork, completeOp, err)
	default:
		return apperr.New(apperr.KindMalformed, completeOp, err)
	}
}
