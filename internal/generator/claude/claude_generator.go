package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"mederror/internal/config"
	"mederror/internal/generator"
	"mederror/internal/port"
)

// Generator implements port.Generator using the Anthropic Messages API.
type Generator struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// Factory adapts NewGenerator to generator.ProviderFactory.
func Factory(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
	return NewGenerator(cfg), nil
}

// NewGenerator creates a Claude-based generator from a provider config.
// cfg.Endpoint overrides the API base URL.
func NewGenerator(cfg *config.GeneratorProviderConfig) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(timeout),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	return &Generator{
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   g.maxTokens,
		Temperature: anthropic.Float(g.temperature),
		System: []anthropic.TextBlockParam{
			{Text: input.SystemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input.UserPrompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := 0
			if apiErr.Response != nil {
				retryAfter = generator.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
			}
			return nil, generator.NewRateLimitError("claude", err, retryAfter)
		}
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			text := strings.TrimSpace(block.Text)
			if text == "" {
				break
			}
			return &port.GenerateOutput{Text: text, ModelUsed: g.model}, nil
		}
	}
	return nil, fmt.Errorf("no text content in anthropic response (stop_reason: %s)", message.StopReason)
}
