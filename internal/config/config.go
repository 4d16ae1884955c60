package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds the Telegram bot settings.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"TG_BOT_TOKEN"`
	// LongPollTimeout is a duration string; 0 or empty uses the default.
	LongPollTimeout string `yaml:"longpoll_timeout" envconfig:"TG_LONGPOLL_TIMEOUT"`
}

// VKConfig holds the VK community bot settings.
type VKConfig struct {
	Token      string `yaml:"token" envconfig:"VK_COMMUNITY_TOKEN"`
	GroupID    int64  `yaml:"group_id" envconfig:"VK_GROUP_ID"`
	APIVersion string `yaml:"api_version" envconfig:"VK_API_VERSION"`
	// Wait is the long-poll wait in seconds; 0 uses the default (25).
	Wait int `yaml:"wait" envconfig:"VK_LONGPOLL_WAIT"`
}

// RedisConfig points at the shared serving store.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// PostgresConfig points at the optional durable corpus backend.
type PostgresConfig struct {
	URL string `yaml:"url" envconfig:"POSTGRES_URL"`
}

// QuizConfig tunes corpus serving.
type QuizConfig struct {
	// CacheTTL bounds staleness of the in-process question cache.
	CacheTTL string `yaml:"cache_ttl" envconfig:"QUIZ_CACHE_TTL"`
}

// LoggingConfig selects log verbosity and output format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	VK       VKConfig       `yaml:"vk"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Quiz     QuizConfig     `yaml:"quiz"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is not an error: container deployments configure the bots
// entirely through the environment.
func Load(path string) (Config, error) {
	cfg := Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only configuration
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("apply env overrides: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
