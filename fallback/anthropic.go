package fallback

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/habiliai/answerdesk/errors"
)

const (
	defaultAnthropicModel    = "claude-3-5-haiku-latest"
	anthropicMaxAnswerTokens = 1024
	anthropicRequestTimeout  = 2 * time.Minute
)

type Anthropic struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

var (
	_ Answerer = (*Anthropic)(nil)
)

func NewAnthropic(apiKey, model string, logger *slog.Logger) *Anthropic {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &Anthropic{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(anthropicRequestTimeout),
		),
		model:  model,
		logger: logger,
	}
}

func (a *Anthropic) Answer(ctx context.Context, question string) (string, error) {
	startTime := time.Now()

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxAnswerTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
	})
	if err != nil {
		return "", errors.Wrapf(err, "anthropic fallback request failed")
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", errors.New("anthropic fallback returned an empty answer")
	}

	a.logger.Info("generated fallback answer",
		"provider", "anthropic",
		"model", a.model,
		"duration", time.Since(startTime))
	return answer, nil
}
