package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MAX_ATTEMPTS", "RETRY_BASE_DELAY", "PACING_DELAY", "MAX_PAGES_PER_CHUNK"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8807" {
		t.Errorf("expected default port 8807, got %q", cfg.Port)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.RetryBaseDelay != 1500*time.Millisecond {
		t.Errorf("expected 1.5s base delay, got %v", cfg.RetryBaseDelay)
	}
	if cfg.PacingDelay != 5*time.Second {
		t.Errorf("expected 5s pacing, got %v", cfg.PacingDelay)
	}
	if cfg.MaxPagesPerChunk != 4 {
		t.Errorf("expected 4 pages per chunk, got %d", cfg.MaxPagesPerChunk)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_PAGES_PER_CHUNK", "6")
	t.Setenv("PACING_DELAY", "2s")
	t.Setenv("RETRY_BASE_DELAY", "500ms")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.MaxPagesPerChunk != 6 {
		t.Errorf("expected 6 pages per chunk, got %d", cfg.MaxPagesPerChunk)
	}
	if cfg.PacingDelay != 2*time.Second {
		t.Errorf("expected 2s pacing, got %v", cfg.PacingDelay)
	}
	if cfg.RetryBaseDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms base delay, got %v", cfg.RetryBaseDelay)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation to fail without an API key")
	}
	cfg.GeminiAPIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}
