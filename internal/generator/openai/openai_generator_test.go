package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mederror/internal/config"
	"mederror/internal/generator"
	"mederror/internal/generator/openai"
	"mederror/internal/port"
)

var testInput = port.GenerateInput{
	SystemPrompt: "You are an expert.",
	UserPrompt:   "\n\n## Input:\n\nSentence: Pt fell.\tNLP Prediction: FALL\tType of Error: fn",
}

func successResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func TestGenerator_OpenAI_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o", reqBody["model"])
		assert.NotContains(t, reqBody, "temperature")

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
		assert.Equal(t, testInput.UserPrompt, messages[1].(map[string]interface{})["content"])

		_ = json.NewEncoder(w).Encode(successResponse("  **Final Answer**:\nError class: Negation\nReasoning: r  "))
	}))
	defer server.Close()

	g, err := openai.NewGenerator(&config.GeneratorProviderConfig{
		Provider: "openai", APIKey: "test-openai-key", Endpoint: server.URL,
	})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), testInput)
	require.NoError(t, err)
	assert.Equal(t, "**Final Answer**:\nError class: Negation\nReasoning: r", out.Text)
	assert.Equal(t, "gpt-4o", out.ModelUsed)
}

func TestGenerator_Azure_DeploymentURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-12-01-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "az-key", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(successResponse("ok"))
	}))
	defer server.Close()

	g, err := openai.NewGenerator(&config.GeneratorProviderConfig{
		Provider: "azure", APIKey: "az-key", Endpoint: server.URL + "/", DefaultModel: "gpt-4o",
	})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), testInput)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
}

func TestGenerator_Azure_O1FoldsSystemPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, testInput.SystemPrompt+testInput.UserPrompt, msg["content"])
		_ = json.NewEncoder(w).Encode(successResponse("ok"))
	}))
	defer server.Close()

	g, err := openai.NewGenerator(&config.GeneratorProviderConfig{
		Provider: "azure", APIKey: "az-key", Endpoint: server.URL, DefaultModel: "o1",
	})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), testInput)
	require.NoError(t, err)
}

func TestGenerator_Azure_MissingCredentials(t *testing.T) {
	_, err := openai.NewGenerator(&config.GeneratorProviderConfig{Provider: "azure"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_KEY")
}

func TestGenerator_Local_SamplingParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "meta-llama/Meta-Llama-3.1-8B-Instruct", reqBody["model"])
		assert.Equal(t, float64(0), reqBody["temperature"])
		assert.Equal(t, 0.9, reqBody["top_p"])
		assert.Equal(t, float64(1024), reqBody["max_tokens"])
		_ = json.NewEncoder(w).Encode(successResponse("ok"))
	}))
	defer server.Close()

	g, err := openai.NewGenerator(&config.GeneratorProviderConfig{
		Provider:     "local",
		Endpoint:     server.URL + "/v1",
		DefaultModel: "meta-llama/Meta-Llama-3.1-8B-Instruct",
		TopP:         0.9,
		MaxTokens:    1024,
	})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), testInput)
	require.NoError(t, err)
}

func TestGenerator_Local_RequiresEndpoint(t *testing.T) {
	_, err := openai.NewGenerator(&config.GeneratorProviderConfig{Provider: "local"})
	assert.Error(t, err)
}

func TestGenerator_UnsupportedProvider(t *testing.T) {
	_, err := openai.NewGenerator(&config.GeneratorProviderConfig{Provider: "gemini"})
	assert.Error(t, err)
}

func TestGenerator_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	g, err := openai.NewGenerator(&config.GeneratorProviderConfig{Provider: "openai", APIKey: "k", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), testInput)
	var rlErr *generator.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "openai", rlErr.Provider)
	assert.Equal(t, 12.0, rlErr.RetryAfter.Seconds())
}

func TestGenerator_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	g, err := openai.NewGenerator(&config.GeneratorProviderConfig{Provider: "openai", APIKey: "k", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), testInput)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	var rlErr *generator.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestGenerator_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	g, err := openai.NewGenerator(&config.GeneratorProviderConfig{Provider: "openai", APIKey: "k", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), testInput)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
