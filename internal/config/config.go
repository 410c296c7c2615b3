package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabasePath  string
	SessionSecret string
	ClientOrigin  string
	SweepInterval time.Duration
	LogLevel      string
	Port          string
}

func Load() (Config, error) {
	config := Config{
		DatabasePath:  envOrDefault("DATABASE_PATH", "./data/stillgood.db"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		ClientOrigin:  envOrDefault("CLIENT_ORIGIN", "http://localhost:5173"),
		SweepInterval: 60 * time.Second,
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		Port:          envOrDefault("PORT", "4000"),
	}

	if config.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}

	if raw := os.Getenv("SWEEP_INTERVAL_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 1 {
			return Config{}, fmt.Errorf("SWEEP_INTERVAL_SECONDS must be a positive integer, got %q", raw)
		}
		config.SweepInterval = time.Duration(seconds) * time.Second
	}

	return config, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
