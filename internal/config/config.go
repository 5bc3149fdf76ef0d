package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Solver    Solver    `yaml:"solver"`
	QLearning QLearning `yaml:"qlearning"`
	Redis     Redis     `yaml:"redis"`
}

type Solver struct {
	Epsilon float64 `yaml:"epsilon" env:"SOLVER_EPSILON" env-default:"0.0001"`
}

type QLearning struct {
	Episodes     int     `yaml:"episodes" env:"QLEARNING_EPISODES" env-default:"50000"`
	Alpha        float64 `yaml:"alpha" env:"QLEARNING_ALPHA" env-default:"0.1"`
	Epsilon      float64 `yaml:"epsilon" env:"QLEARNING_EPSILON" env-default:"0.1"`
	Gamma        float64 `yaml:"gamma" env:"QLEARNING_GAMMA" env-default:"0.9"`
	EpsilonDecay float64 `yaml:"epsilon-decay" env:"QLEARNING_EPSILON_DECAY" env-default:"0.9999"`
	EpsilonMin   float64 `yaml:"epsilon-min" env:"QLEARNING_EPSILON_MIN" env-default:"0.01"`
	Seed         int64   `yaml:"seed" env:"QLEARNING_SEED" env-default:"0"`
}

type Redis struct {
	Host      string        `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port      string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	ReportTTL time.Duration `yaml:"report-ttl" env:"REDIS_REPORT_TTL" env-default:"0s"`
}

// MustLoad - load all configurations in config.yml file. A missing file leaves defaults and environment.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return config, nil
}

// GetRedisAddr - empty when no host is configured, which disables report storage.
func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
