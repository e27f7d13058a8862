package services

import "context"

// AIProvider is the interface that all LLM completion providers implement
type AIProvider interface {
	// AskLLM sends a prompt to the model and returns the completion text
	// with token usage.
	// Returns: (response string, inputTokens int, outputTokens int, error)
	AskLLM(ctx context.Context, systemPrompt string, userPrompt string) (string, int, int, error)

	// GetProviderName returns the name of the provider (e.g., "openrouter", "gemini")
	GetProviderName() string

	// GetModelName returns the model name being used
	GetModelName() string
}
