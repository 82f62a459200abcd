package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	minSessionSecretLen = 32
	maxAnalysisDelay    = 10 * time.Second
)

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	Port          string `env:"PORT" default:"8080"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`
	SessionSecret string `env:"SESSION_SECRET"`
	RedisURL      string `env:"REDIS_URL"`
	Scorer        string `env:"SCORER" default:"lexicon"`
	LexiconPath   string `env:"LEXICON_PATH"`

	MaxUploadBytes int64   `env:"MAX_UPLOAD_BYTES" default:"1048576"`
	MaxTextBytes   int64   `env:"MAX_TEXT_BYTES" default:"102400"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" default:"10"`

	AnalysisDelay time.Duration `env:"ANALYSIS_DELAY" default:"0s"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLen)
	}

	switch cfg.Scorer {
	case "lexicon", "vader":
	default:
		return fmt.Errorf("SCORER must be 'lexicon' or 'vader', got %q", cfg.Scorer)
	}

	switch cfg.LogFormat {
	case "text", "json", "tint":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'text', 'json' or 'tint', got %q", cfg.LogFormat)
	}

	if cfg.AnalysisDelay < 0 || cfg.AnalysisDelay > maxAnalysisDelay {
		return fmt.Errorf("ANALYSIS_DELAY must be between 0s and %s", maxAnalysisDelay)
	}
	if cfg.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.MaxTextBytes <= 0 {
		return errors.New("MAX_TEXT_BYTES must be positive")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if cfg.SessionMaxAge < time.Minute {
		return errors.New("SESSION_MAX_AGE must be at least 1m")
	}

	return nil
}
