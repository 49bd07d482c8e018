package answerdesk_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/habiliai/answerdesk"
	"github.com/habiliai/answerdesk/config"
	"github.com/habiliai/answerdesk/errors"
	"github.com/habiliai/answerdesk/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	base       knowledge.Base
	getErr     error
	appended   []knowledge.Entry
	unanswered []string
}

var _ knowledge.Store = (*fakeStore)(nil)

func (f *fakeStore) Get(ctx context.Context) (knowledge.Base, error) {
	return f.base.Clone(), f.getErr
}

func (f *fakeStore) Refresh(ctx context.Context) (knowledge.Base, error) {
	return f.Get(ctx)
}

func (f *fakeStore) Stats(ctx context.Context) (*knowledge.Stats, error) {
	return &knowledge.Stats{TotalQuestions: len(f.base)}, nil
}

func (f *fakeStore) AppendEntry(ctx context.Context, question, answer, category string) error {
	f.appended = append(f.appended, knowledge.Entry{
		Category: category,
		Question: question,
		Answer:   answer,
		Priority: knowledge.DefaultPriority,
	})
	return nil
}

func (f *fakeStore) LogUnanswered(ctx context.Context, query, userID, username string) {
	f.unanswered = append(f.unanswered, query)
}

type staticAnswerer struct {
	answer string
	err    error
}

func (a staticAnswerer) Answer(ctx context.Context, question string) (string, error) {
	return a.answer, a.err
}

func newDesk(t *testing.T, store knowledge.Store, answerer staticAnswerer) *answerdesk.AnswerDesk {
	t.Helper()

	conf := config.NewKnowledgeConfig()
	desk, err := answerdesk.New(
		context.Background(),
		answerdesk.WithKnowledgeConfig(conf),
		answerdesk.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		answerdesk.WithStore(store),
		answerdesk.WithAnswerer(answerer),
	)
	require.NoError(t, err)
	return desk
}

func knownBase() knowledge.Base {
	return knowledge.Base{
		{Category: "IT", Question: "How do I reset my password", Answer: "Contact IT", Priority: 1},
		{Category: "HR", Question: "How many vacation days do I get", Answer: "25 days", Priority: 2},
	}
}

func TestAskMatched(t *testing.T) {
	store := &fakeStore{base: knownBase()}
	desk := newDesk(t, store, staticAnswerer{err: errors.ErrNotFound})

	result, err := desk.Ask(context.Background(), answerdesk.AskRequest{
		Question: "password reset how",
		UserID:   "1",
		Username: "alex",
	})
	require.NoError(t, err)

	assert.Equal(t, answerdesk.OutcomeMatched, result.Outcome)
	require.NotNil(t, result.Match)
	assert.Equal(t, "Contact IT", result.Match.Entry.Answer)
	assert.Empty(t, store.unanswered)
}

func TestAskFallback(t *testing.T) {
	store := &fakeStore{base: knownBase()}
	desk := newDesk(t, store, staticAnswerer{answer: "Check the breaker panel."})

	result, err := desk.Ask(context.Background(), answerdesk.AskRequest{
		Question: "why does the workshop breaker keep tripping",
		UserID:   "1",
		Username: "alex",
	})
	require.NoError(t, err)

	assert.Equal(t, answerdesk.OutcomeFallback, result.Outcome)
	assert.Equal(t, "Check the breaker panel.", result.Answer)

	// The unanswered question was recorded and the learned pair appended.
	require.Len(t, store.unanswered, 1)
	require.Len(t, store.appended, 1)
	assert.Equal(t, answerdesk.FallbackCategory, store.appended[0].Category)
}

func TestAskNoAnswer(t *testing.T) {
	store := &fakeStore{base: knownBase()}
	desk := newDesk(t, store, staticAnswerer{err: errors.Wrap(errors.ErrNotFound, "disabled")})

	result, err := desk.Ask(context.Background(), answerdesk.AskRequest{
		Question: "completely unrelated gibberish question",
	})
	require.NoError(t, err)

	assert.Equal(t, answerdesk.OutcomeNoAnswer, result.Outcome)
	assert.Empty(t, store.appended)
}

func TestAskUnavailable(t *testing.T) {
	t.Run("empty base", func(t *testing.T) {
		desk := newDesk(t, &fakeStore{}, staticAnswerer{err: errors.ErrNotFound})

		result, err := desk.Ask(context.Background(), answerdesk.AskRequest{Question: "anything at all here"})
		require.NoError(t, err)
		assert.Equal(t, answerdesk.OutcomeUnavailable, result.Outcome)
	})

	t.Run("schema error propagates", func(t *testing.T) {
		store := &fakeStore{getErr: errors.Wrap(errors.ErrSchema, "missing columns")}
		desk := newDesk(t, store, staticAnswerer{err: errors.ErrNotFound})

		result, err := desk.Ask(context.Background(), answerdesk.AskRequest{Question: "anything at all here"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrSchema))
		assert.Equal(t, answerdesk.OutcomeUnavailable, result.Outcome)
	})
}

func TestNewValidatesConfig(t *testing.T) {
	conf := config.NewKnowledgeConfig()
	conf.SimilarityThreshold = 250

	_, err := answerdesk.New(context.Background(), answerdesk.WithKnowledgeConfig(conf))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestCategories(t *testing.T) {
	desk := newDesk(t, &fakeStore{base: knownBase()}, staticAnswerer{err: errors.ErrNotFound})

	categories, err := desk.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"HR", "IT"}, categories)
}
