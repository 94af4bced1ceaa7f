package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/joho/godotenv"
	"github.com/pscheid92/postpulse/internal/schedule"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`
	Timezone    string `env:"TIMEZONE" default:"UTC"`

	// ln(10)/90: a 90-day-old observation weighs 10% of a fresh one.
	DecayLambda              float64 `env:"DECAY_LAMBDA" default:"0.025584278811044952"`
	SentimentInfluence       float64 `env:"SENTIMENT_INFLUENCE" default:"0.35"`
	ConfidenceK              float64 `env:"CONFIDENCE_K" default:"5"`
	VariancePenaltyThreshold float64 `env:"VARIANCE_PENALTY_THRESHOLD" default:"1.0"`
	MinSlotSpacingHours      int     `env:"MIN_SLOT_SPACING_HOURS" default:"3"`
	TopN                     int     `env:"TOP_N" default:"3"`
	LookbackDays             int     `env:"LOOKBACK_DAYS" default:"180"`

	CacheTTL       time.Duration `env:"CACHE_TTL" default:"15m"`
	LocalCacheSize int           `env:"LOCAL_CACHE_SIZE" default:"1024"`

	SentimentAPIURL     string        `env:"SENTIMENT_API_URL"`
	SentimentAPIKey     string        `env:"SENTIMENT_API_KEY"`
	SentimentAPITimeout time.Duration `env:"SENTIMENT_API_TIMEOUT" default:"10s"`
	SentimentThreshold  float64       `env:"SENTIMENT_THRESHOLD" default:"0.3"`

	APIRateLimit float64 `env:"API_RATE_LIMIT" default:"10"`
	APIRateBurst int     `env:"API_RATE_BURST" default:"20"`

	location *time.Location
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
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

// RequireServer checks the settings only the HTTP server needs.
func (c *Config) RequireServer() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

// Location is the time zone slots are computed in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Lookback is how far back history is loaded for a recommendation.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

// ScheduleParams converts the engine settings into schedule.Params.
func (c *Config) ScheduleParams() schedule.Params {
	return schedule.Params{
		DecayLambda:              c.DecayLambda,
		SentimentInfluence:       c.SentimentInfluence,
		ConfidenceK:              c.ConfidenceK,
		VariancePenaltyThreshold: c.VariancePenaltyThreshold,
		MinSlotSpacingHours:      c.MinSlotSpacingHours,
		TopN:                     c.TopN,
		Location:                 c.Location(),
	}
}

func validate(cfg *Config) error {
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE is not a valid IANA time zone: %w", err)
	}
	cfg.location = loc

	if err := cfg.ScheduleParams().Validate(); err != nil {
		return fmt.Errorf("invalid engine settings: %w", err)
	}

	switch {
	case cfg.LookbackDays < 1:
		return fmt.Errorf("LOOKBACK_DAYS must be >= 1, got %d", cfg.LookbackDays)
	case cfg.CacheTTL < 0:
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", cfg.CacheTTL)
	case cfg.LocalCacheSize < 0:
		return fmt.Errorf("LOCAL_CACHE_SIZE must not be negative, got %d", cfg.LocalCacheSize)
	case cfg.SentimentAPITimeout <= 0:
		return fmt.Errorf("SENTIMENT_API_TIMEOUT must be positive, got %s", cfg.SentimentAPITimeout)
	case cfg.SentimentAPIURL != "" && cfg.SentimentAPIKey == "":
		return errors.New("SENTIMENT_API_KEY is required when SENTIMENT_API_URL is set")
	case math.IsNaN(cfg.SentimentThreshold) || cfg.SentimentThreshold < 0 || cfg.SentimentThreshold > 1:
		return fmt.Errorf("SENTIMENT_THRESHOLD must be in [0,1], got %v", cfg.SentimentThreshold)
	case cfg.APIRateLimit <= 0 || cfg.APIRateBurst < 1:
		return fmt.Errorf("API_RATE_LIMIT must be positive and API_RATE_BURST >= 1, got %v/%d", cfg.APIRateLimit, cfg.APIRateBurst)
	}

	return nil
}
