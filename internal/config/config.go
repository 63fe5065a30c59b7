package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string `env:"SERVER_PORT" env-default:"8080"`
	DatabaseType   string `env:"DATABASE_TYPE" env-default:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL"`
	DatabasePath   string `env:"DATABASE_PATH" env-default:"./dicteeclash.db"`
	MigrationsPath string `env:"MIGRATIONS_DIR" env-default:"./migrations"`
	UploadMaxSize  int64  `env:"UPLOAD_MAX_SIZE" env-default:"10485760"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" env-default:"24h"`

	SynthesisAPIKey  string        `env:"SYNTHESIS_API_KEY"`
	SynthesisBaseURL string        `env:"SYNTHESIS_BASE_URL" env-default:"https://api.deepseek.com/"`
	SynthesisModel   string        `env:"SYNTHESIS_MODEL" env-default:"deepseek-chat"`
	SynthesisTimeout time.Duration `env:"SYNTHESIS_TIMEOUT" env-default:"15s"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	SESRegion    string `env:"SES_REGION"`
	SESFromEmail string `env:"SES_FROM_EMAIL"`
	AppBaseURL   string `env:"APP_BASE_URL" env-default:"http://localhost:8080"`

	TTSEnabled     bool   `env:"TTS_ENABLED" env-default:"true"`
	AudioCacheDir  string `env:"AUDIO_CACHE_DIR" env-default:"./audio_cache"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" env-default:"true"`
}

// Load reads configuration from the environment, after loading a .env file
// when one is present in the working directory.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: failed to load .env file: %v", err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case "sqlite", "sqlite3":
		if c.DatabasePath == "" && c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_PATH is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE %q", c.DatabaseType)
	}
	if c.UploadMaxSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	return nil
}

// DatabaseDSN returns the connection string for the configured database.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// GoogleOAuthEnabled reports whether Google sign-in is fully configured.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// EmailEnabled reports whether share-code emails can be sent.
func (c *Config) EmailEnabled() bool {
	return c.SESRegion != "" && c.SESFromEmail != ""
}
