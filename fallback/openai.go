package fallback

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/habiliai/answerdesk/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAI struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

var (
	_ Answerer = (*OpenAI)(nil)
)

func NewOpenAI(apiKey, model string, logger *slog.Logger) *OpenAI {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
		),
		model:  model,
		logger: logger,
	}
}

func (o *OpenAI) Answer(ctx context.Context, question string) (string, error) {
	startTime := time.Now()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(question),
		},
	})
	if err != nil {
		return "", errors.Wrapf(err, "openai fallback request failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai fallback returned no choices")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("openai fallback returned an empty answer")
	}

	o.logger.Info("generated fallback answer",
		"provider", "openai",
		"model", o.model,
		"duration", time.Since(startTime))
	return answer, nil
}
