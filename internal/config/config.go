// Package config provides configuration loading from the environment for
// the server and CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds server configuration
type Config struct {
	DatabaseURL string
	Port        int
	LogLevel    string
	LogFormat   string

	// Per-client request rate for the API, in requests per second, with
	// RateBurst extra requests allowed in a burst.
	RateLimit float64
	RateBurst int

	AllowedOrigin string
}

// Load reads server configuration from environment variables.
// DATABASE_URL is required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Port:          8080,
		LogLevel:      envOr("LOG_LEVEL", "info"),
		LogFormat:     envOr("LOG_FORMAT", "json"),
		RateLimit:     10,
		RateBurst:     20,
		AllowedOrigin: envOr("ALLOWED_ORIGIN", "*"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT: %s", v)
		}
		cfg.Port = port
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %s", v)
		}
		cfg.RateLimit = rps
	}

	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst < 1 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %s", v)
		}
		cfg.RateBurst = burst
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
