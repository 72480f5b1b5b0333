package config

import (
	"testing"
	"time"

	"promptgate/internal/ratelimit"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "AIzaTest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Server.BasePath != "/api/v1" {
		t.Fatalf("expected default base path /api/v1, got %q", cfg.Server.BasePath)
	}
	if cfg.Storage.Type != "memory" {
		t.Fatalf("expected default storage memory, got %q", cfg.Storage.Type)
	}
	if cfg.Provider.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %s", cfg.Provider.Timeout)
	}
	if cfg.RateLimit.PerDay != 200 || cfg.RateLimit.PerHour != 50 || cfg.RateLimit.PerMinute != 10 {
		t.Fatalf("expected default quotas 200/50/10, got %d/%d/%d",
			cfg.RateLimit.PerDay, cfg.RateLimit.PerHour, cfg.RateLimit.PerMinute)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when GOOGLE_API_KEY is missing")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "AIzaTest")
	t.Setenv("RATE_LIMIT_OVERRIDES", "/api/v1/generate/text:5:minute, /api/v1/classify/text:100:hour")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ratelimit.Quota{Requests: 5, Window: ratelimit.Minute}
	if got := cfg.RateLimit.Overrides["/api/v1/generate/text"]; got != want {
		t.Fatalf("unexpected override: got %+v want %+v", got, want)
	}
	want = ratelimit.Quota{Requests: 100, Window: ratelimit.Hour}
	if got := cfg.RateLimit.Overrides["/api/v1/classify/text"]; got != want {
		t.Fatalf("unexpected override: got %+v want %+v", got, want)
	}
}

func TestLoadRejectsBadOverride(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "AIzaTest")
	t.Setenv("RATE_LIMIT_OVERRIDES", "/api/v1/generate/text:5:fortnight")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown window kind")
	}
}

func TestLoadRejectsBadQuota(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "AIzaTest")
	t.Setenv("RATE_LIMIT_PER_HOUR", "lots")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric quota")
	}
}

func TestLoadProviderOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "AIzaTest")
	t.Setenv("GEMINI_TIMEOUT", "5s")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-flash")
	t.Setenv("GEMINI_MAX_OUTPUT_TOKENS", "512")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider.Timeout != 5*time.Second {
		t.Fatalf("expected timeout 5s, got %s", cfg.Provider.Timeout)
	}
	if cfg.Provider.Model != "gemini-1.5-flash" {
		t.Fatalf("unexpected model %q", cfg.Provider.Model)
	}
	if cfg.Provider.MaxOutputTokens != 512 {
		t.Fatalf("unexpected max tokens %d", cfg.Provider.MaxOutputTokens)
	}
}
