package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"telegram-files-client/internal/api"
)

// Config holds the application configuration.
type Config struct {
	AppEnv    string
	Debug     bool
	Version   string
	SentryDSN string

	ServerURL         string        // Root of the file server API, e.g. http://localhost:8000
	OutputDir         string        // Directory the JSON document is written to
	Language          string        // Language code for prompts and messages (en, ru)
	RequestLog        bool          // Log every HTTP exchange
	RequestTimeout    time.Duration // Zero means no client-side timeout
	RequestsPerSecond int           // Zero means unlimited
	CheckFileAccess   bool          // Probe each listed file's stream with HEAD
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
// Malformed values are returned as errors.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	debug, err := parseBool("DEBUG", false)
	if err != nil {
		return nil, err
	}
	requestLog, err := parseBool("REQUEST_LOG", false)
	if err != nil {
		return nil, err
	}
	checkAccess, err := parseBool("CHECK_FILE_ACCESS", false)
	if err != nil {
		return nil, err
	}

	// Durations use Go syntax: "30s", "1m30s"
	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}

	// Requests are paced by a ratelimit.Limiter built from this value
	rps, err := strconv.Atoi(getEnv("REQUESTS_PER_SECOND", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUESTS_PER_SECOND: %w", err)
	}
	if rps < 0 {
		return nil, fmt.Errorf("REQUESTS_PER_SECOND must not be negative")
	}

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Debug:             debug,
		Version:           getEnv("VERSION", "dev"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		ServerURL:         getEnv("SERVER_URL", api.DefaultBaseURL),
		OutputDir:         getEnv("OUTPUT_DIR", "."),
		Language:          getEnv("LANGUAGE", "en"),
		RequestLog:        requestLog,
		RequestTimeout:    timeout,
		RequestsPerSecond: rps,
		CheckFileAccess:   checkAccess,
	}

	// Basic validation for essential variables
	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("SERVER_URL must be an http(s) URL with a host, got %q", cfg.ServerURL)
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// parseBool reads a boolean environment variable. Unset or empty values
// return defaultValue; anything strconv.ParseBool rejects is an error.
func parseBool(key string, defaultValue bool) (bool, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
