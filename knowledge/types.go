package knowledge

import (
	"time"

	"github.com/mokiat/gog"
)

type (
	// Entry is one category/question/answer row of the knowledge base.
	Entry struct {
		Category    string     `json:"category"`
		Question    string     `json:"question"`
		Answer      string     `json:"answer"`
		Priority    int        `json:"priority"`
		LastUpdated *time.Time `json:"lastUpdated,omitempty"`
	}

	// Base is an ordered knowledge base snapshot. Row order is load order
	// and duplicate questions stay independent rows. Snapshots handed out
	// by a store are copies; callers must not feed a mutated snapshot back.
	Base []Entry

	// Match scores one entry against one query.
	Match struct {
		Entry Entry `json:"entry"`
		Score int   `json:"score"`
	}

	Stats struct {
		TotalQuestions int            `json:"totalQuestions"`
		Categories     int            `json:"categories"`
		LastLoaded     *time.Time     `json:"lastLoaded,omitempty"`
		ByCategory     map[string]int `json:"byCategory,omitempty"`
	}
)

const (
	DefaultCategory = "General"
	DefaultPriority = 5
)

func (b Base) Clone() Base {
	if b == nil {
		return nil
	}
	out := make(Base, len(b))
	copy(out, b)
	return out
}

func (b Base) Questions() []string {
	return gog.Map(b, func(e Entry) string {
		return e.Question
	})
}
