package providers

import (
	"fmt"

	"github.com/kjaylee/contentforge/internal/config"
)

// NewClient selects the backend named by configuration.
func NewClient(cfg *config.AIConfig) (Client, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel), nil
	case "gemini":
		return NewGeminiClient(cfg.GeminiKey, cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
