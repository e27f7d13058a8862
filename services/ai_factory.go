package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// GetAIProvider creates and returns the appropriate AI provider based on
// configuration, wrapped in a circuit breaker so a flapping upstream
// degrades to local fallbacks instead of cascading.
func GetAIProvider() (AIProvider, error) {
	providerMode := strings.ToLower(os.Getenv("AI_PROVIDER"))

	// Default to openrouter if not specified
	if providerMode == "" {
		providerMode = "openrouter"
		log.Printf("[AIProvider] AI_PROVIDER not set, defaulting to 'openrouter'")
	}

	log.Printf("[AIProvider] Initializing AI provider: %s", providerMode)

	var provider AIProvider
	switch providerMode {
	case "openrouter":
		client, err := NewOpenRouterClient()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenRouter: %w", err)
		}
		log.Printf("[AIProvider] ✓ OpenRouter client ready (model: %s)", client.GetModelName())
		provider = client

	case "gemini":
		client, err := NewGeminiClient()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini: %w", err)
		}
		log.Printf("[AIProvider] ✓ Gemini client ready (model: %s)", client.GetModelName())
		provider = client

	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %s (valid options: openrouter, gemini)", providerMode)
	}

	cb := NewCircuitBreaker(providerMode, 5, 60*time.Second)
	return &guardedProvider{inner: provider, cb: cb}, nil
}

// guardedProvider wraps an AIProvider with circuit breaker protection.
// When the breaker is open, calls fail fast and the pipeline's local
// fallbacks take over.
type guardedProvider struct {
	inner AIProvider
	cb    *CircuitBreaker
}

func (g *guardedProvider) AskLLM(ctx context.Context, systemPrompt, userPrompt string) (string, int, int, error) {
	var response string
	var inTok, outTok int

	err := g.cb.Call(func() error {
		var llmErr error
		response, inTok, outTok, llmErr = g.inner.AskLLM(ctx, systemPrompt, userPrompt)
		return llmErr
	})
	if err != nil {
		return "", 0, 0, err
	}
	return response, inTok, outTok, nil
}

func (g *guardedProvider) GetProviderName() string {
	return g.inner.GetProviderName()
}

func (g *guardedProvider) GetModelName() string {
	return g.inner.GetModelName()
}
