package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the engine.
type AppConfig struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Environment string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// RetentionDays is the age past which the scheduled sweep deletes
	// notifications.
	RetentionDays int
	// CronSpecRetention schedules the retention sweep.
	CronSpecRetention string
}

// Load reads configuration from environment variables and a .env file when
// present. godotenv never overrides variables already set in the environment.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPAddr = envOrDefault("HTTP_ADDR", ":8080")
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOrDefault("ENVIRONMENT", "development"))

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFrom = envOrDefault("SMTP_FROM", cfg.SMTPUser)

	portStr := envOrDefault("SMTP_PORT", "587")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.SMTPPort = port

	retentionStr := envOrDefault("RETENTION_DAYS", "90")
	retention, err := strconv.Atoi(retentionStr)
	if err != nil || retention <= 0 {
		return nil, fmt.Errorf("invalid RETENTION_DAYS: %q", retentionStr)
	}
	cfg.RetentionDays = retention

	cfg.CronSpecRetention = envOrDefault("CRON_SPEC_RETENTION", "0 3 * * *")

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
