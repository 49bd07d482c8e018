package knowledge

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/habiliai/answerdesk/config"
	"github.com/habiliai/answerdesk/internal/sliceutils"
	"github.com/samber/lo"
)

// Matcher ranks knowledge base entries against free-text questions. It is
// a pure function over base snapshots; no locking, no state beyond the
// configured threshold and result cap.
type Matcher struct {
	Threshold  int
	MaxResults int

	logger *slog.Logger
}

func NewMatcher(conf *config.KnowledgeConfig, logger *slog.Logger) *Matcher {
	return &Matcher{
		Threshold:  conf.SimilarityThreshold,
		MaxResults: conf.MaxResults,
		logger:     logger,
	}
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Normalize lowercases, strips punctuation and collapses whitespace.
// Idempotent; an empty result means the question carried no matchable
// content.
func Normalize(question string) string {
	cleaned := strings.ToLower(strings.TrimSpace(question))
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = nonWordPattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
}

// FindMatches scores the question against every entry, keeps candidates at
// or above the threshold, resolves each back to the first row carrying that
// question text, and returns them ordered by score descending then priority
// ascending, capped at MaxResults. Failures never escape: callers always
// receive a possibly-empty list.
func (m *Matcher) FindMatches(question string, base Base) (results []Match) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("error finding matches", "panic", r)
			results = nil
		}
	}()

	if len(base) == 0 {
		m.logger.Warn("knowledge base is empty")
		return nil
	}

	cleaned := Normalize(question)
	if cleaned == "" {
		m.logger.Warn("question is empty after cleaning")
		return nil
	}

	// Score more candidates than the final cap so threshold filtering does
	// not lose borderline matches to tie truncation.
	candidates := extractTop(cleaned, base.Questions(), m.MaxResults*2)

	for _, candidate := range candidates {
		if candidate.score < m.Threshold {
			continue
		}

		// First row with this exact question text wins; duplicate questions
		// are independent rows and the earliest one is the tie-break.
		entry, found := lo.Find(base, func(e Entry) bool {
			return e.Question == candidate.question
		})
		if !found {
			continue
		}

		results = append(results, Match{Entry: entry, Score: candidate.score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.Priority < results[j].Entry.Priority
	})

	results = sliceutils.Cut(results, 0, m.MaxResults)

	m.logger.Info("found matches", "count", len(results), "question", question)
	return results
}

// BestMatch returns the single best match, nil when nothing clears the
// threshold.
func (m *Matcher) BestMatch(question string, base Base) *Match {
	matches := m.FindMatches(question, base)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// SearchByCategory restricts matching to rows whose category matches
// case-insensitively.
func (m *Matcher) SearchByCategory(question string, base Base, category string) []Match {
	filtered := lo.Filter(base, func(e Entry, _ int) bool {
		return strings.EqualFold(e.Category, category)
	})
	if len(filtered) == 0 {
		m.logger.Warn("no questions found in category", "category", category)
		return nil
	}

	return m.FindMatches(question, Base(filtered))
}

// Categories lists distinct category values, sorted.
func (m *Matcher) Categories(base Base) []string {
	categories := lo.Uniq(lo.FilterMap(base, func(e Entry, _ int) (string, bool) {
		return e.Category, e.Category != ""
	}))
	sort.Strings(categories)
	return categories
}

// SimilarityScore exposes the internal metric: normalize both strings, then
// token-sort ratio. Zero when either side normalizes to empty.
func (m *Matcher) SimilarityScore(a, b string) int {
	cleanedA, cleanedB := Normalize(a), Normalize(b)
	if cleanedA == "" || cleanedB == "" {
		return 0
	}
	return TokenSortRatio(cleanedA, cleanedB)
}

type scoredQuestion struct {
	question string
	score    int
}

// extractTop scores the cleaned query against every question and returns
// the top limit candidates by score.
func extractTop(cleaned string, questions []string, limit int) []scoredQuestion {
	scored := make([]scoredQuestion, 0, len(questions))
	for _, question := range questions {
		scored = append(scored, scoredQuestion{
			question: question,
			score:    TokenSortRatio(cleaned, Normalize(question)),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	return sliceutils.Cut(scored, 0, limit)
}
