package config

type ServerConfig struct {
	Host string `env:"HOST" yaml:"host"`
	Port int    `env:"PORT" yaml:"port"`
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Host: "0.0.0.0",
		Port: 3000,
	}
}
