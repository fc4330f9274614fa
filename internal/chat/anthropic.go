package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/disanlib/reader-server/internal/logger"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

const anthropicMaxTokens = 1024

// AnthropicOptions configures an AnthropicClient.
type AnthropicOptions struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; tests point it at httptest.
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// AnthropicClient answers through the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

// NewAnthropicClient creates an Anthropic responder.
func NewAnthropicClient(opts AnthropicOptions) (*AnthropicClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if opts.Model == "" {
		opts.Model = DefaultAnthropicModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithRequestTimeout(opts.Timeout),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(reqOpts...),
		model:  opts.Model,
		logger: opts.Logger,
	}, nil
}

// Name implements Responder.
func (c *AnthropicClient) Name() string { return NameAnthropic }

// Respond implements Responder.
func (c *AnthropicClient) Respond(ctx context.Context, query string) (string, error) {
	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(c.model)),
		MaxTokens: anthropic.F(int64(anthropicMaxTokens)),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(SystemPrompt),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
		}),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", wrapError(NameAnthropic, "messages", apiErr.StatusCode, errors.Join(statusError(apiErr.StatusCode), err))
		}
		return "", wrapError(NameAnthropic, "messages", 0, err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		sb.WriteString(block.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", wrapError(NameAnthropic, "messages", 0, ErrEmptyResponse)
	}

	c.logger.Debug("anthropic answered",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(text),
	)
	return text, nil
}
