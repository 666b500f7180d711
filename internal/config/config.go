package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"3001"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Enabled      bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host         string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port         string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	HistoryLimit int64  `yaml:"history-limit" env-default:"20"`
}

// Game holds the tunables of a room.
type Game struct {
	MaxPenaltyLines int `yaml:"max-penalty-lines" env-default:"4"`
	SequenceBatch   int `yaml:"sequence-batch" env-default:"100"`
	MaxNameLength   int `yaml:"max-name-length" env-default:"32"`
	SendBuffer      int `yaml:"send-buffer" env-default:"64"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the config file and applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
