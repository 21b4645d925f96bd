package llm

import (
	"context"
	"fmt"

	"github.com/kumar-cmd/syngenta-ai/internal/config"
)

// Provider is the narrow text-generation capability the rest of the
// system depends on. One concrete adapter exists per backend.
type Provider interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
	GetProviderType() string
}

// NewProvider creates an LLM provider from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "bedrock":
		return NewBedrockProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
