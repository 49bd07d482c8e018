package config

import (
	"github.com/habiliai/answerdesk/errors"
)

const (
	FallbackProviderOpenAI    = "openai"
	FallbackProviderAnthropic = "anthropic"
	FallbackProviderDisabled  = "disabled"
)

type FallbackConfig struct {
	// Provider selects the generative answerer used when no knowledge base
	// entry clears the threshold: "openai", "anthropic" or "disabled".
	// Default: disabled
	Provider string `env:"FALLBACK_PROVIDER" yaml:"provider"`

	// Model names the chat model for the selected provider.
	Model string `env:"FALLBACK_MODEL" yaml:"model"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY" yaml:"-"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY" yaml:"-"`
}

func NewFallbackConfig() *FallbackConfig {
	return &FallbackConfig{
		Provider: FallbackProviderDisabled,
	}
}

func (c *FallbackConfig) Validate() error {
	switch c.Provider {
	case FallbackProviderDisabled:
		return nil
	case FallbackProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.Wrap(errors.ErrInvalidConfig, "OPENAI_API_KEY is required for the openai fallback provider")
		}
	case FallbackProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return errors.Wrap(errors.ErrInvalidConfig, "ANTHROPIC_API_KEY is required for the anthropic fallback provider")
		}
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown fallback provider: %s", c.Provider)
	}
	return nil
}
