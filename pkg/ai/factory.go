package ai

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/config"
)

// NewClient creates the LLM client selected by configuration. Returns
// (nil, nil) when no API key is configured: a valid mode in which the
// advisor substitutes placeholder text for every request.
func NewClient(cfg *config.AIConfig, logger *zap.Logger) (Client, error) {
	if !cfg.Configured() {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(&OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		}, logger)
	case config.ProviderAnthropic:
		return NewAnthropicClient(&AnthropicConfig{
			Model:  cfg.Model,
			APIKey: cfg.APIKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}
