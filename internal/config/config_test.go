package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPPort != "8081" {
		t.Fatalf("HTTPPort = %q", cfg.HTTPPort)
	}
	if cfg.SessionTTL != 8*time.Hour {
		t.Fatalf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MIN", "10")
	t.Setenv("STAFF_KEY", "sekrit")

	cfg := Load()
	if cfg.HTTPPort != "9000" {
		t.Fatalf("HTTPPort = %q", cfg.HTTPPort)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMin != 10 {
		t.Fatalf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
	if cfg.StaffKey != "sekrit" {
		t.Fatalf("StaffKey = %q", cfg.StaffKey)
	}
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")

	cfg := Load()
	if cfg.SessionTTL != 8*time.Hour {
		t.Fatalf("SessionTTL = %s, want fallback", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("RateLimitPerMin = %d, want fallback", cfg.RateLimitPerMin)
	}
}
