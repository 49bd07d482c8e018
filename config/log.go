package config

type LogConfig struct {
	LogLevel   string `env:"LOG_LEVEL" yaml:"logLevel"`
	LogHandler string `env:"LOG_HANDLER" yaml:"logHandler"`
}

func NewLogConfig() *LogConfig {
	return &LogConfig{
		LogLevel:   "info",
		LogHandler: "default",
	}
}
