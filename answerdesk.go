package answerdesk

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/habiliai/answerdesk/config"
	"github.com/habiliai/answerdesk/errors"
	"github.com/habiliai/answerdesk/fallback"
	"github.com/habiliai/answerdesk/internal/mylog"
	"github.com/habiliai/answerdesk/knowledge"
)

type (
	// AnswerDesk wires the knowledge store, the matcher and the fallback
	// answerer behind one Ask call. The chat transport renders its results;
	// it never reaches into cache internals.
	AnswerDesk struct {
		store    knowledge.Store
		matcher  *knowledge.Matcher
		answerer fallback.Answerer
		logger   *slog.Logger

		knowledgeConfig *config.KnowledgeConfig
		fallbackConfig  *config.FallbackConfig
		logConfig       *config.LogConfig
	}

	Option func(*AnswerDesk)

	Outcome string

	AskRequest struct {
		Question string
		UserID   string
		Username string
	}

	AskResult struct {
		Outcome      Outcome           `json:"outcome"`
		Match        *knowledge.Match  `json:"match,omitempty"`
		Alternatives []knowledge.Match `json:"alternatives,omitempty"`
		Answer       string            `json:"answer,omitempty"`
	}
)

const (
	// OutcomeMatched: the knowledge base answered.
	OutcomeMatched Outcome = "matched"
	// OutcomeFallback: the generative answerer produced the answer and the
	// pair was appended to the store.
	OutcomeFallback Outcome = "fallback"
	// OutcomeNoAnswer: the store is fine but nothing matched and no
	// fallback answer exists.
	OutcomeNoAnswer Outcome = "no_answer"
	// OutcomeUnavailable: the store is empty or broken. Distinct from
	// OutcomeNoAnswer so transports can say "try again later" instead of
	// "not found".
	OutcomeUnavailable Outcome = "unavailable"
)

// FallbackCategory labels entries the generative fallback appended, so the
// curation loop can review them separately.
const FallbackCategory = "AI Generated"

func WithLogger(logger *slog.Logger) Option {
	return func(d *AnswerDesk) {
		d.logger = logger
	}
}

func WithKnowledgeConfig(conf *config.KnowledgeConfig) Option {
	return func(d *AnswerDesk) {
		d.knowledgeConfig = conf
	}
}

func WithFallbackConfig(conf *config.FallbackConfig) Option {
	return func(d *AnswerDesk) {
		d.fallbackConfig = conf
	}
}

func WithLogConfig(conf *config.LogConfig) Option {
	return func(d *AnswerDesk) {
		d.logConfig = conf
	}
}

func WithStore(store knowledge.Store) Option {
	return func(d *AnswerDesk) {
		d.store = store
	}
}

func WithAnswerer(answerer fallback.Answerer) Option {
	return func(d *AnswerDesk) {
		d.answerer = answerer
	}
}

func New(ctx context.Context, optionFuncs ...Option) (*AnswerDesk, error) {
	d := &AnswerDesk{
		knowledgeConfig: config.NewKnowledgeConfig(),
		fallbackConfig:  config.NewFallbackConfig(),
		logConfig:       config.NewLogConfig(),
	}
	for _, f := range optionFuncs {
		f(d)
	}

	if err := d.knowledgeConfig.Validate(); err != nil {
		return nil, err
	}

	if d.logger == nil {
		d.logger = mylog.NewLogger(d.logConfig.LogLevel, d.logConfig.LogHandler)
	}

	if d.store == nil {
		d.store = knowledge.NewCSVStore(d.knowledgeConfig, d.logger)
	}

	d.matcher = knowledge.NewMatcher(d.knowledgeConfig, d.logger)

	if d.answerer == nil {
		answerer, err := fallback.NewAnswerer(d.fallbackConfig, d.logger)
		if err != nil {
			return nil, err
		}
		d.answerer = answerer
	}

	return d, nil
}

func (d *AnswerDesk) Store() knowledge.Store {
	return d.store
}

func (d *AnswerDesk) Matcher() *knowledge.Matcher {
	return d.matcher
}

// Ask resolves one question end to end: load the base, match, and when
// nothing clears the threshold record the question and consult the
// fallback answerer. Schema failures on the primary source are the only
// errors that surface; everything else degrades to an outcome.
func (d *AnswerDesk) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	logger := d.logger.With("askId", uuid.NewString())
	logger.Info("question received", "user", req.Username, "question", req.Question)

	base, err := d.store.Get(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrSchema) {
			return &AskResult{Outcome: OutcomeUnavailable}, err
		}
		logger.Error("knowledge base unavailable", "error", err)
		return &AskResult{Outcome: OutcomeUnavailable}, nil
	}
	if len(base) == 0 {
		logger.Warn("knowledge base is empty, asking the user to retry later")
		return &AskResult{Outcome: OutcomeUnavailable}, nil
	}

	matches := d.matcher.FindMatches(req.Question, base)
	if len(matches) > 0 {
		return &AskResult{
			Outcome:      OutcomeMatched,
			Match:        &matches[0],
			Alternatives: matches[1:],
		}, nil
	}

	d.store.LogUnanswered(ctx, req.Question, req.UserID, req.Username)

	answer, err := d.answerer.Answer(ctx, req.Question)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			logger.Error("fallback answerer failed", "error", err)
		}
		return &AskResult{Outcome: OutcomeNoAnswer}, nil
	}

	if err := d.store.AppendEntry(ctx, req.Question, answer, FallbackCategory); err != nil {
		// The user still gets the answer; only the knowledge base missed
		// out on learning it.
		logger.Error("failed to append fallback answer to knowledge base", "error", err)
	}

	return &AskResult{
		Outcome: OutcomeFallback,
		Answer:  answer,
	}, nil
}

// Categories lists the distinct categories of the current base.
func (d *AnswerDesk) Categories(ctx context.Context) ([]string, error) {
	base, err := d.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return d.matcher.Categories(base), nil
}

func (d *AnswerDesk) Stats(ctx context.Context) (*knowledge.Stats, error) {
	return d.store.Stats(ctx)
}

func (d *AnswerDesk) Refresh(ctx context.Context) error {
	_, err := d.store.Refresh(ctx)
	return err
}
