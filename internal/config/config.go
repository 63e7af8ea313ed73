// Package config provides configuration loading and management for the application.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string

	// Base URLs for the protocol data sources
	OrbiterURL string
	HopURL     string

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	// API keys for various services
	APIKeys map[string]string

	// Per-adapter request timeout
	RequestTimeout time.Duration

	// Retry policy for upstream requests
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Address-keyed result cache TTL
	CacheTTL time.Duration

	// Per-IP rate limit: budget per rolling window
	RateLimitBudget int
	RateLimitWindow time.Duration

	// Global admission limiter
	GlobalRPS   float64
	GlobalBurst int

	// Circuit breaker settings
	BreakerFailureThreshold int
	BreakerCooldown         time.Duration
}

// Load creates a new Config from environment variables
func Load() Config {
	apiKeys := map[string]string{}
	if raw := os.Getenv("API_KEYS"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &apiKeys)
	}

	return Config{
		Port:                    GetEnvOrDefault("PORT", "8080"),
		OrbiterURL:              GetEnvOrDefault("ORBITER_URL", "https://api.orbiter.finance/v1"),
		HopURL:                  GetEnvOrDefault("HOP_URL", "https://explorer-api.hop.exchange/v1"),
		OtelEndpoint:            GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		APIKeys:                 apiKeys,
		RequestTimeout:          GetEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		MaxRetries:              GetEnvAsInt("MAX_RETRIES", 3),
		RetryWaitMin:            GetEnvAsDuration("RETRY_WAIT_MIN", 500*time.Millisecond),
		RetryWaitMax:            GetEnvAsDuration("RETRY_WAIT_MAX", 3*time.Second),
		CacheTTL:                GetEnvAsDuration("CACHE_TTL", 5*time.Minute),
		RateLimitBudget:         GetEnvAsInt("RATE_LIMIT_BUDGET", 10),
		RateLimitWindow:         GetEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		GlobalRPS:               GetEnvAsFloat("RATE_LIMIT_RPS", 50.0),
		GlobalBurst:             GetEnvAsInt("RATE_LIMIT_BURST", 100),
		BreakerFailureThreshold: GetEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerCooldown:         GetEnvAsDuration("BREAKER_COOLDOWN", 2*time.Minute),
	}
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetEnvAsBool retrieves an environment variable as a boolean with a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := GetEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
