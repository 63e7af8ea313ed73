package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.RateLimitBudget != 10 {
		t.Errorf("RateLimitBudget = %d, want 10", cfg.RateLimitBudget)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.RateLimitWindow)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.BreakerFailureThreshold != 5 {
		t.Errorf("BreakerFailureThreshold = %d, want 5", cfg.BreakerFailureThreshold)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_BUDGET", "25")
	t.Setenv("API_KEYS", `{"orbiter": "key-a", "hop": "key-b"}`)

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("RequestTimeout = %v, want 2s", cfg.RequestTimeout)
	}
	if cfg.RateLimitBudget != 25 {
		t.Errorf("RateLimitBudget = %d, want 25", cfg.RateLimitBudget)
	}
	if cfg.APIKeys["orbiter"] != "key-a" || cfg.APIKeys["hop"] != "key-b" {
		t.Errorf("APIKeys = %v, want both service keys", cfg.APIKeys)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_RETRIES", "not-a-number")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("API_KEYS", "{broken json")

	cfg := Load()

	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.MaxRetries)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want default 5m", cfg.CacheTTL)
	}
	if len(cfg.APIKeys) != 0 {
		t.Errorf("APIKeys = %v, want empty on malformed json", cfg.APIKeys)
	}
}
