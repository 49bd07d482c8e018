package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/habiliai/answerdesk/errors"
)

// DeskConfig is the on-disk shape of an answerdesk YAML file. File values
// are applied on top of the built-in defaults and below environment
// variables, which always win.
type DeskConfig struct {
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Fallback  FallbackConfig  `yaml:"fallback"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
}

func LoadDeskFile(path string) (*DeskConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read desk file: %s", path)
	}

	conf := &DeskConfig{
		Knowledge: *NewKnowledgeConfig(),
		Fallback:  *NewFallbackConfig(),
		Log:       *NewLogConfig(),
		Server:    *NewServerConfig(),
	}
	if err := yaml.Unmarshal(raw, conf); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal desk file: %s", path)
	}

	return conf, nil
}
