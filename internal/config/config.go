package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/skanerxe/nutrition-helper/internal/logger"
)

type Config struct {
	GitHub      GitHubConfig
	Cache       CacheConfig
	Fallback    FallbackConfig
	Redis       RedisConfig
	Maintenance MaintenanceConfig
	Logger      LoggerConfig
}

// GitHubConfig points at the repository used as the document store
type GitHubConfig struct {
	Token    string
	Owner    string
	Repo     string
	Branch   string
	BasePath string
}

type CacheConfig struct {
	TTL time.Duration
}

type FallbackConfig struct {
	DBPath string
}

// RedisConfig is optional; chat history falls back to in-memory state
// when no host is configured.
type RedisConfig struct {
	Host string
	Port string
}

type MaintenanceConfig struct {
	Schedule      string
	RetentionDays int
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnvOrDefault("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	retentionDays, err := strconv.Atoi(getEnvOrDefault("CLEANUP_RETENTION_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLEANUP_RETENTION_DAYS: %w", err)
	}

	cfg := &Config{
		GitHub: GitHubConfig{
			Token:    os.Getenv("GITHUB_TOKEN"),
			Owner:    os.Getenv("GITHUB_OWNER"),
			Repo:     os.Getenv("GITHUB_REPO"),
			Branch:   getEnvOrDefault("GITHUB_BRANCH", "main"),
			BasePath: getEnvOrDefault("GITHUB_BASE_PATH", "Database"),
		},
		Cache: CacheConfig{
			TTL: ttl,
		},
		Fallback: FallbackConfig{
			DBPath: getEnvOrDefault("FALLBACK_DB_PATH", "data/fallback.db"),
		},
		Redis: RedisConfig{
			Host: os.Getenv("REDIS_HOST"),
			Port: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Maintenance: MaintenanceConfig{
			Schedule:      getEnvOrDefault("CLEANUP_SCHEDULE", "@daily"),
			RetentionDays: retentionDays,
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "logs/app.log"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.GitHub.Token == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if c.GitHub.Owner == "" {
		missing = append(missing, "GITHUB_OWNER")
	}
	if c.GitHub.Repo == "" {
		missing = append(missing, "GITHUB_REPO")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.Maintenance.RetentionDays <= 0 {
		return fmt.Errorf("CLEANUP_RETENTION_DAYS must be positive, got %d", c.Maintenance.RetentionDays)
	}
	return nil
}
