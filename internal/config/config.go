// Package config loads application configuration from the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/logger"
)

// DBConfig holds the postgres connection settings.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Config holds the application's configuration values. The locale and all
// limits are threaded explicitly into the components that need them; there
// is no process-wide mutable settings object.
type Config struct {
	ServerPort string

	GitLabURL           string
	GitLabToken         string
	GitLabWebhookSecret string

	LLMAPIURL      string
	LLMAPIKey      string
	LLMModel       string
	LLMMaxAttempts int
	LLMTimeout     time.Duration
	LLMMaxTokens   int
	LLMTemperature float64

	Locale string

	MaxWorkers        int
	MaxFilesPerReview int
	FileConcurrency   int

	Logger   logger.Config
	Database *DBConfig
}

// LoadConfig reads configuration from environment variables and a .env
// file, sets defaults, and validates required fields.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LOCALE", "en")
	v.SetDefault("MAX_WORKERS", 5)
	v.SetDefault("MAX_FILES_PER_REVIEW", 20)
	v.SetDefault("FILE_CONCURRENCY", 4)
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_MAX_ATTEMPTS", 3)
	v.SetDefault("LLM_TIMEOUT", "30s")
	v.SetDefault("LLM_MAX_TOKENS", 4096)
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "10m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing .env is fine; a broken one is not.
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	if v.GetString("GITLAB_URL") == "" {
		return nil, fmt.Errorf("GITLAB_URL must be set")
	}
	if v.GetString("GITLAB_TOKEN") == "" {
		return nil, fmt.Errorf("GITLAB_TOKEN must be set")
	}
	if v.GetString("GITLAB_WEBHOOK_SECRET") == "" {
		return nil, fmt.Errorf("GITLAB_WEBHOOK_SECRET must be set")
	}
	if v.GetString("LLM_API_URL") == "" {
		return nil, fmt.Errorf("LLM_API_URL must be set")
	}
	if v.GetString("DB_USER") == "" || v.GetString("DB_NAME") == "" {
		return nil, fmt.Errorf("DB_USER and DB_NAME must be set")
	}

	cfg := &Config{
		ServerPort:          v.GetString("SERVER_PORT"),
		GitLabURL:           v.GetString("GITLAB_URL"),
		GitLabToken:         v.GetString("GITLAB_TOKEN"),
		GitLabWebhookSecret: v.GetString("GITLAB_WEBHOOK_SECRET"),
		LLMAPIURL:           v.GetString("LLM_API_URL"),
		LLMAPIKey:           v.GetString("LLM_API_KEY"),
		LLMModel:            v.GetString("LLM_MODEL"),
		LLMMaxAttempts:      v.GetInt("LLM_MAX_ATTEMPTS"),
		LLMTimeout:          v.GetDuration("LLM_TIMEOUT"),
		LLMMaxTokens:        v.GetInt("LLM_MAX_TOKENS"),
		LLMTemperature:      v.GetFloat64("LLM_TEMPERATURE"),
		Locale:              v.GetString("LOCALE"),
		MaxWorkers:          v.GetInt("MAX_WORKERS"),
		MaxFilesPerReview:   v.GetInt("MAX_FILES_PER_REVIEW"),
		FileConcurrency:     v.GetInt("FILE_CONCURRENCY"),
		Logger: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
		Database: &DBConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			Username:        v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Database:        v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("MAX_WORKERS must be positive, got %d", c.MaxWorkers)
	}
	if c.MaxFilesPerReview <= 0 {
		return fmt.Errorf("MAX_FILES_PER_REVIEW must be positive, got %d", c.MaxFilesPerReview)
	}
	if c.FileConcurrency <= 0 {
		return fmt.Errorf("FILE_CONCURRENCY must be positive, got %d", c.FileConcurrency)
	}
	if c.LLMMaxAttempts <= 0 {
		return fmt.Errorf("LLM_MAX_ATTEMPTS must be positive, got %d", c.LLMMaxAttempts)
	}
	switch c.Locale {
	case "en", "zh":
	default:
		return fmt.Errorf("unsupported LOCALE %q (supported: en, zh)", c.Locale)
	}
	return nil
}
