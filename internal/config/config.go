package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Gemini generation
	GeminiAPIKey string
	GeminiModel  string

	// Retry policy for generation calls
	MaxAttempts    int
	RetryBaseDelay time.Duration

	// Pause between chunks during a batch run
	PacingDelay time.Duration

	// Chunking
	MaxPagesPerChunk int

	// Upload limits
	MaxUploadBytes int64
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8807"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-2.5-flash"),

		MaxAttempts:    envInt("MAX_ATTEMPTS", 3),
		RetryBaseDelay: envDuration("RETRY_BASE_DELAY", 1500*time.Millisecond),

		PacingDelay: envDuration("PACING_DELAY", 5*time.Second),

		MaxPagesPerChunk: envInt("MAX_PAGES_PER_CHUNK", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 1500 * time.Millisecond
	}
	if cfg.PacingDelay < 0 {
		cfg.PacingDelay = 5 * time.Second
	}
	if cfg.MaxPagesPerChunk <= 0 {
		cfg.MaxPagesPerChunk = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
