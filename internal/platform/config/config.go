package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Statement engine tuning
	StatementPageSize int
	SessionTTL        time.Duration
	PageFetchTimeout  time.Duration
	PageRetryBackoff  time.Duration

	// RateLimit uses the limiter format, e.g. "100-M" for 100 req/minute.
	RateLimit string

	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STATEMENT_PAGE_SIZE", 25)
	viper.SetDefault("SESSION_TTL", "30m")
	viper.SetDefault("PAGE_FETCH_TIMEOUT", "15s")
	viper.SetDefault("PAGE_RETRY_BACKOFF", "500ms")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("ALLOWED_ORIGINS", "*")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.StatementPageSize = viper.GetInt("STATEMENT_PAGE_SIZE")
	if cfg.StatementPageSize <= 0 {
		cfg.StatementPageSize = 25
		log.Printf("Warning: Invalid STATEMENT_PAGE_SIZE. Defaulting to %d.\n", cfg.StatementPageSize)
	}

	cfg.SessionTTL = durationOrDefault("SESSION_TTL", 30*time.Minute)
	cfg.PageFetchTimeout = durationOrDefault("PAGE_FETCH_TIMEOUT", 15*time.Second)
	cfg.PageRetryBackoff = durationOrDefault("PAGE_RETRY_BACKOFF", 500*time.Millisecond)

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.AllowedOrigins = viper.GetStringSlice("ALLOWED_ORIGINS")

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
