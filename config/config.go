package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Environment string
	ServerPort  string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string

	// Face recognition (Luxand cloud). Empty token selects mock mode.
	LuxandAPIToken   string
	LuxandCollection string

	// Outbound automation webhook. Empty URL disables notifications.
	WebhookURL    string
	WebhookSecret string

	SessionSweepInterval time.Duration
}

func Load() (*Config, error) {
	return &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		ServerPort:           getEnv("PORT", "8080"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnvInt("DB_PORT", 5432),
		DBUser:               getEnv("DB_USER", "postgres"),
		DBPassword:           getEnv("DB_PASSWORD", ""),
		DBName:               getEnv("DB_NAME", "smartattend"),
		LuxandAPIToken:       getEnv("LUXAND_API_TOKEN", ""),
		LuxandCollection:     getEnv("LUXAND_COLLECTION", ""),
		WebhookURL:           getEnv("N8N_WEBHOOK_URL", ""),
		WebhookSecret:        getEnv("N8N_WEBHOOK_SECRET", ""),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Hour),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
