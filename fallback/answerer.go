// Package fallback holds the generative answerers consulted when no
// knowledge base entry clears the similarity threshold. Answers flow back
// into the store through AppendEntry, which invalidates the cache.
package fallback

import (
	"context"
	"log/slog"

	"github.com/habiliai/answerdesk/config"
	"github.com/habiliai/answerdesk/errors"
)

const systemPrompt = "You are a workplace knowledge assistant. " +
	"Answer the employee's question concisely and factually. " +
	"If you do not know the answer, say so instead of guessing."

type (
	Answerer interface {
		Answer(ctx context.Context, question string) (string, error)
	}

	// Disabled always reports not-found; the desk then surfaces a plain
	// "no answer" outcome.
	Disabled struct{}
)

var (
	_ Answerer = (*Disabled)(nil)
)

func (Disabled) Answer(ctx context.Context, question string) (string, error) {
	return "", errors.Wrap(errors.ErrNotFound, "fallback answering is disabled")
}

func NewAnswerer(conf *config.FallbackConfig, logger *slog.Logger) (Answerer, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	switch conf.Provider {
	case config.FallbackProviderOpenAI:
		return NewOpenAI(conf.OpenAIAPIKey, conf.Model, logger), nil
	case config.FallbackProviderAnthropic:
		return NewAnthropic(conf.AnthropicAPIKey, conf.Model, logger), nil
	default:
		return Disabled{}, nil
	}
}
