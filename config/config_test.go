package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/habiliai/answerdesk/config"
	"github.com/habiliai/answerdesk/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeConfigDefaults(t *testing.T) {
	conf := config.NewKnowledgeConfig()

	assert.Equal(t, "knowledge_base.csv", conf.CSVPath)
	assert.Equal(t, 30, conf.CacheDuration)
	assert.Equal(t, 60, conf.SimilarityThreshold)
	assert.Equal(t, 5, conf.MaxResults)
	require.NoError(t, conf.Validate())
}

func TestKnowledgeConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*config.KnowledgeConfig)
	}{
		{name: "threshold above range", mutate: func(c *config.KnowledgeConfig) { c.SimilarityThreshold = 101 }},
		{name: "threshold below range", mutate: func(c *config.KnowledgeConfig) { c.SimilarityThreshold = -1 }},
		{name: "max results too small", mutate: func(c *config.KnowledgeConfig) { c.MaxResults = 0 }},
		{name: "negative cache duration", mutate: func(c *config.KnowledgeConfig) { c.CacheDuration = -5 }},
		{name: "no source at all", mutate: func(c *config.KnowledgeConfig) { c.CSVPath = ""; c.RemoteURL = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := config.NewKnowledgeConfig()
			tc.mutate(conf)

			err := conf.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		})
	}
}

func TestResolveConfigReadsEnv(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "75")
	t.Setenv("MAX_SEARCH_RESULTS", "3")

	conf := config.NewKnowledgeConfig()
	require.NoError(t, config.ResolveConfig(conf, false))

	assert.Equal(t, 75, conf.SimilarityThreshold)
	assert.Equal(t, 3, conf.MaxResults)
	// Untouched values keep their defaults.
	assert.Equal(t, 30, conf.CacheDuration)
}

func TestLoadDeskFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
knowledge:
  csvPath: data/kb.csv
  similarityThreshold: 70
fallback:
  provider: disabled
server:
  port: 8080
`), 0o644))

	conf, err := config.LoadDeskFile(path)
	require.NoError(t, err)

	assert.Equal(t, "data/kb.csv", conf.Knowledge.CSVPath)
	assert.Equal(t, 70, conf.Knowledge.SimilarityThreshold)
	// Values absent from the file keep their defaults.
	assert.Equal(t, 5, conf.Knowledge.MaxResults)
	assert.Equal(t, 8080, conf.Server.Port)
	assert.Equal(t, "0.0.0.0", conf.Server.Host)
}

func TestLoadDeskFileMissing(t *testing.T) {
	_, err := config.LoadDeskFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
