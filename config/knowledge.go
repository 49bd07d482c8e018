package config

import (
	"github.com/habiliai/answerdesk/errors"
)

type KnowledgeConfig struct {
	// CSVPath is the local knowledge base file.
	// Default: knowledge_base.csv
	CSVPath string `env:"CSV_FILE_PATH" yaml:"csvPath"`

	// RemoteURL optionally points at a remote copy of the knowledge base.
	// When set it takes precedence over CSVPath; any remote failure falls
	// back to the local file.
	RemoteURL string `env:"KNOWLEDGE_REMOTE_URL" yaml:"remoteUrl"`

	// CacheDuration is the cache window in minutes.
	// Default: 30
	CacheDuration int `env:"CACHE_DURATION_MINUTES" yaml:"cacheDuration"`

	// SimilarityThreshold is the minimum 0..100 score for a match.
	// Default: 60
	SimilarityThreshold int `env:"SIMILARITY_THRESHOLD" yaml:"similarityThreshold"`

	// MaxResults caps how many matches a single question returns.
	// Default: 5
	MaxResults int `env:"MAX_SEARCH_RESULTS" yaml:"maxResults"`

	// UnansweredPath is the append-only log of questions nothing matched.
	// Default: data/unanswered_questions.csv
	UnansweredPath string `env:"UNANSWERED_PATH" yaml:"unansweredPath"`
}

// NewKnowledgeConfig creates a new KnowledgeConfig with sensible defaults.
// These defaults can be overridden by environment variables.
func NewKnowledgeConfig() *KnowledgeConfig {
	return &KnowledgeConfig{
		CSVPath:             "knowledge_base.csv",
		CacheDuration:       30,
		SimilarityThreshold: 60,
		MaxResults:          5,
		UnansweredPath:      "data/unanswered_questions.csv",
	}
}

func (c *KnowledgeConfig) Validate() error {
	if c.CSVPath == "" && c.RemoteURL == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "a local CSV path or a remote URL is required")
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 100 {
		return errors.Wrap(errors.ErrInvalidConfig, "SIMILARITY_THRESHOLD must be between 0 and 100")
	}
	if c.MaxResults < 1 {
		return errors.Wrap(errors.ErrInvalidConfig, "MAX_SEARCH_RESULTS must be at least 1")
	}
	if c.CacheDuration < 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "CACHE_DURATION_MINUTES must not be negative")
	}
	return nil
}
