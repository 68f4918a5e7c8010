package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting of the scoreboard server.
type Config struct {
	// Empty DatabaseURL runs the server on in-memory repositories.
	DatabaseURL  string        `env:"DATABASE_URL"`
	ServerPort   int           `env:"SERVER_PORT" envDefault:"8080"`
	JWTSecretKey string        `env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Cloudflare R2 archive; all or none.
	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`

	HistoryLimit   int `env:"HISTORY_LIMIT" envDefault:"100"`
	LeaderboardTop int `env:"LEADERBOARD_TOP" envDefault:"10"`
}

// Load reads the environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.DatabaseURL != "" && c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	r2 := []string{c.R2AccountID, c.R2AccessKeyID, c.R2SecretAccessKey, c.R2BucketName, c.R2PublicBaseURL}
	set := 0
	for _, v := range r2 {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(r2) {
		return errors.New("R2 settings are incomplete: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL or none")
	}
	return nil
}

// InMemory reports whether no database is configured.
func (c *Config) InMemory() bool {
	return c.DatabaseURL == ""
}

// ArchiveEnabled reports whether finished games are uploaded to R2.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != ""
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
