package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the server
type Config struct {
	Port          string
	GinMode       string
	DatabaseURL   string
	SessionSecret string
	// CookieSecure marks the session cookie Secure; enable behind TLS
	CookieSecure  bool
	TemplatesDir  string
	StaticDir     string

	// TimeZone pins calendar bucketing for the analytics charts
	TimeZone string

	Logging LoggingConfig
	Redis   RedisConfig

	// SeedCategories are created on startup when the categories table is empty
	SeedCategories []string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// RedisConfig holds the optional rate limiter backend
type RedisConfig struct {
	URL             string
	RatePerMinute   int
	RateLimitWindow time.Duration
}

// Enabled reports whether a Redis backend was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=boarddash port=5432 sslmode=disable TimeZone=UTC"

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional, system env vars win
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:          v.GetString("PORT"),
		GinMode:       v.GetString("GIN_MODE"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),
		TemplatesDir:  v.GetString("TEMPLATES_DIR"),
		StaticDir:     v.GetString("STATIC_DIR"),
		TimeZone:      v.GetString("APP_TIMEZONE"),
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Redis: RedisConfig{
			URL:             v.GetString("REDIS_URL"),
			RatePerMinute:   v.GetInt("RATE_LIMIT_PER_MINUTE"),
			RateLimitWindow: time.Minute,
		},
		SeedCategories: splitList(v.GetString("SEED_CATEGORIES")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("DATABASE_URL", defaultDSN)
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("TEMPLATES_DIR", "./web/templates")
	v.SetDefault("STATIC_DIR", "./web/static")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("SEED_CATEGORIES", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.TimeZone, err)
	}
	if c.Redis.Enabled() && c.Redis.RatePerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// Location returns the pinned analytics time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
