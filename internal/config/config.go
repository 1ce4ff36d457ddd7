package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultAPIURL is used when GRADER_API_URL is not set.
const DefaultAPIURL = "http://localhost:8000/api"

// Store drivers understood by Load.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds runtime configuration values for the grading client. It is
// resolved once at startup and passed explicitly to every component.
type Config struct {
	AppName         string
	APIURL          string
	APIKey          string
	HTTPTimeout     time.Duration
	DownloadDir     string
	StoreDriver     string
	StoreDSN        string
	RedisURL        string
	LogLevel        zerolog.Level
	MaxArchiveEntry int64
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "gema-grader")
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("http.timeout", "2m")
	v.SetDefault("download.dir", ".")
	v.SetDefault("store.driver", StoreSQLite)
	v.SetDefault("store.dsn", "grader.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("archive.max_entry_mb", 50)

	timeout, err := time.ParseDuration(v.GetString("http.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid http timeout: %w", err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log.level")))
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		APIURL:          strings.TrimSpace(v.GetString("api.url")),
		APIKey:          v.GetString("api.key"),
		HTTPTimeout:     timeout,
		DownloadDir:     v.GetString("download.dir"),
		StoreDriver:     strings.ToLower(v.GetString("store.driver")),
		StoreDSN:        v.GetString("store.dsn"),
		RedisURL:        v.GetString("redis.url"),
		LogLevel:        level,
		MaxArchiveEntry: v.GetInt64("archive.max_entry_mb") * 1024 * 1024,
	}

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	if cfg.MaxArchiveEntry <= 0 {
		cfg.MaxArchiveEntry = 50 * 1024 * 1024
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite, StorePostgres:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis store requires GRADER_REDIS_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	return cfg, nil
}
