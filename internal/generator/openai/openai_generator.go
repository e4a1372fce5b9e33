package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mederror/internal/config"
	"mederror/internal/generator"
	"mederror/internal/port"
)

const (
	apiURL                 = "https://api.openai.com/v1/chat/completions"
	defaultAzureAPIVersion = "2024-12-01-preview"
)

// Generator implements port.Generator over the Chat Completions API. One
// type serves OpenAI itself, Azure OpenAI deployments and local
// OpenAI-compatible servers, selected by the provider name.
type Generator struct {
	provider string
	apiKey   string
	model    string
	endpoint string
	client   *http.Client

	sampling    bool
	temperature float64
	topP        float64
	maxTokens   int
}

// Factory adapts NewGenerator to generator.ProviderFactory.
func Factory(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
	return NewGenerator(cfg)
}

// NewGenerator creates a chat completions generator for the openai, azure or local provider.
func NewGenerator(cfg *config.GeneratorProviderConfig) (*Generator, error) {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	g := &Generator{
		provider:    cfg.Provider,
		apiKey:      cfg.APIKey,
		model:       model,
		client:      &http.Client{Timeout: timeout},
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
	}

	switch cfg.Provider {
	case "openai":
		g.endpoint = apiURL
		if cfg.Endpoint != "" {
			g.endpoint = cfg.Endpoint
		}
	case "azure":
		if cfg.APIKey == "" || cfg.Endpoint == "" {
			return nil, errors.New("azure openai credentials not provided: set AZURE_OPENAI_KEY and AZURE_OPENAI_ENDPOINT")
		}
		version := cfg.APIVersion
		if version == "" {
			version = defaultAzureAPIVersion
		}
		g.endpoint = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			strings.TrimRight(cfg.Endpoint, "/"), url.PathEscape(model), url.QueryEscape(version))
	case "local":
		if cfg.Endpoint == "" {
			return nil, errors.New("local provider requires an endpoint")
		}
		g.endpoint = strings.TrimRight(cfg.Endpoint, "/") + "/chat/completions"
		g.sampling = true
	default:
		return nil, fmt.Errorf("openai generator does not serve provider %q", cfg.Provider)
	}
	return g, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Model returns the model or deployment name requests are sent to.
func (g *Generator) Model() string { return g.model }

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	reqBody := request{Model: g.model, Messages: buildMessages(g.model, input)}
	if g.sampling {
		reqBody.Temperature = &g.temperature
		reqBody.TopP = &g.topP
		reqBody.MaxTokens = g.maxTokens
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case g.provider == "azure":
		req.Header.Set("api-key", g.apiKey)
	case g.apiKey != "":
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", g.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("%s API error (status %d): %s", g.provider, resp.StatusCode, generator.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError(g.provider, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, g.model)
}

// buildMessages folds the instruction into the user turn for models that
// reject system messages.
func buildMessages(model string, input port.GenerateInput) []message {
	if generator.FoldsSystemPrompt(model) {
		return []message{{Role: "user", Content: input.SystemPrompt + input.UserPrompt}}
	}
	return []message{
		{Role: "system", Content: input.SystemPrompt},
		{Role: "user", Content: input.UserPrompt},
	}
}

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, fmt.Errorf("empty response from API (finish_reason: %s)", resp.Choices[0].FinishReason)
	}

	return &port.GenerateOutput{Text: text, ModelUsed: model}, nil
}
