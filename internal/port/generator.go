package port

import "context"

// GenerateInput carries one classification request.
type GenerateInput struct {
	SystemPrompt string
	UserPrompt   string
}

// GenerateOutput is the raw model answer.
type GenerateOutput struct {
	Text      string
	ModelUsed string
}

// Generator abstracts an LLM chat completion call.
type Generator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}
